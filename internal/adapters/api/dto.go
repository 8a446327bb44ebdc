package api

import (
	"time"

	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/internal/domain/users"
)

// Money crosses the API boundary as float euros and lives as integer cents
// everywhere else.

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createItemRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageKey    string  `json:"image_key"`
	BasePrice   float64 `json:"base_price"`
}

type createAuctionRequest struct {
	ItemIDs      []string  `json:"item_ids"`
	MinIncrement float64   `json:"min_increment"`
	Deadline     time.Time `json:"deadline"`
}

type placeBidRequest struct {
	Amount float64 `json:"amount"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type itemResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageKey    string    `json:"image_key,omitempty"`
	BasePrice   float64   `json:"base_price"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type auctionResponse struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	InitialPrice float64   `json:"initial_price"`
	MinIncrement float64   `json:"min_increment"`
	Deadline     time.Time `json:"deadline"`
	Status       string    `json:"status"`
	WinnerID     *string   `json:"winner_id,omitempty"`
	FinalPrice   *float64  `json:"final_price,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type bidResponse struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type auctionDetailResponse struct {
	Auction    auctionResponse `json:"auction"`
	Items      []itemResponse  `json:"items"`
	Bids       []bidResponse   `json:"bids"`
	HighestBid *bidResponse    `json:"highest_bid,omitempty"`
	MinNextBid float64         `json:"min_next_bid"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

func toItemResponse(i *items.Item) itemResponse {
	return itemResponse{
		ID:          i.ID.String(),
		Code:        i.Code,
		Name:        i.Name,
		Description: i.Description,
		ImageKey:    i.ImageKey,
		BasePrice:   auctions.FromCents(i.BasePrice),
		OwnerID:     i.OwnerID.String(),
		CreatedAt:   i.CreatedAt,
	}
}

func toItemResponses(list []*items.Item) []itemResponse {
	out := make([]itemResponse, 0, len(list))
	for _, i := range list {
		out = append(out, toItemResponse(i))
	}
	return out
}

func toAuctionResponse(a *auctions.Auction) auctionResponse {
	resp := auctionResponse{
		ID:           a.ID.String(),
		CreatorID:    a.CreatorID.String(),
		InitialPrice: auctions.FromCents(a.InitialPrice),
		MinIncrement: auctions.FromCents(a.MinIncrement),
		Deadline:     a.Deadline,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
	}
	if a.WinnerID != nil {
		w := a.WinnerID.String()
		resp.WinnerID = &w
	}
	if a.FinalPrice != nil {
		p := auctions.FromCents(*a.FinalPrice)
		resp.FinalPrice = &p
	}
	return resp
}

func toAuctionResponses(list []*auctions.Auction) []auctionResponse {
	out := make([]auctionResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAuctionResponse(a))
	}
	return out
}

func toBidResponse(b *auctions.Bid) bidResponse {
	return bidResponse{
		ID:        b.ID.String(),
		AuctionID: b.AuctionID.String(),
		BidderID:  b.BidderID.String(),
		Amount:    auctions.FromCents(b.Amount),
		CreatedAt: b.CreatedAt,
	}
}

func toBidResponses(list []*auctions.Bid) []bidResponse {
	out := make([]bidResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBidResponse(b))
	}
	return out
}
