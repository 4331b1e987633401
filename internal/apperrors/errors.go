package apperrors

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTier         = errors.New("invalid fee tier")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrPledgeNotFound      = errors.New("pledge not found")
	ErrCampaignClosed      = errors.New("campaign is not accepting pledges")
	ErrInsufficientTickets = errors.New("insufficient available tickets")
)
