package dto

// Feed 条目类型
const (
	FeedItemTypeVideo = "video"
	FeedItemTypeAd    = "ad"
)

// FeedItem Feed 中的一条内容，Video 和 Ad 按 Type 二选一
type FeedItem struct {
	Type  string     `json:"type"`
	Video *VideoInfo `json:"video,omitempty"`
	Ad    *AdInfo    `json:"ad,omitempty"`
}

// FeedPage 一页 Feed 内容
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	PageSize   int        `json:"page_size"`
	HasMore    bool       `json:"has_more"`
	NextCursor *int       `json:"next_cursor,omitempty"`
}
