package friends

import "github.com/ourlittlekingdom/asocijacije/internal/domain"

type friendListResponse struct {
	Friends []domain.FriendView `json:"friends"`
}

type pendingListResponse struct {
	Pending []domain.Profile `json:"pending"`
}
