package service

const (
	MsgWalletConnected        = "Wallet connected successfully"
	MsgWalletAlreadyConnected = "Wallet already connected"
	MsgWalletAddressRequired  = "Wallet address is required"
	MsgReferralFieldsRequired = "Referral code and wallet address are required"
	MsgInvalidWalletAddress   = "Invalid wallet address"
	MsgInvalidReferralCode    = "Invalid referral code"
	MsgOwnReferralCode        = "You cannot use your own referral code"
	MsgAlreadyReferred        = "You already have a referral code"
	MsgValidReferralCode      = "Valid referral code"
	MsgReferralSubmitted      = "Referral code submitted successfully"
	MsgReferralSubmitFailed   = "Failed to submit referral code"
	MsgReferralValidateFailed = "Failed to validate referral"
	MsgReferralAlreadyDone    = "Referral already processed"
	MsgReferralSkipped        = "Referral skipped successfully"
	MsgUserNotFound           = "User not found"
	MsgTxHashRequired         = "Transaction hash is required"
	MsgInvalidTxHash          = "Invalid transaction hash"
	MsgInvalidAmount          = "Invalid amount provided"
	MsgDuplicateTransaction   = "Transaction already submitted"
	MsgStakeFailed            = "Failed to update stake"
	MsgStakeInfoFailed        = "Failed to fetch stake info"
	MsgWalletNotMirrored      = "Wallet not mirrored"
	MsgInternalServerError    = "Internal server error"
)
