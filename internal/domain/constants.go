package domain

const (
	RoleBidder = "BIDDER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

const (
	AuctionStatusActive = "ACTIVE"
	AuctionStatusPaused = "PAUSED"
	AuctionStatusEnded  = "ENDED"
)

// Ledger transaction kinds. FREEZE/UNFREEZE move funds between available and
// reserved without changing ownership; DEBIT/CREDIT transfer ownership.
const (
	TxKindFreeze   = "FREEZE"
	TxKindUnfreeze = "UNFREEZE"
	TxKindDebit    = "DEBIT"
	TxKindCredit   = "CREDIT"
)

// Notification topics published after a successful commit.
const (
	TopicNewBid     = "NEW-BID"
	TopicEndAuction = "END-AUCTION"
	TopicBanUser    = "BAN-USER"
)
