package dto

// PageInfo 列表响应共用的分页字段，嵌入后在 JSON 里平铺
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

// NewPageInfo 计算总页数并组装分页字段
func NewPageInfo(total int64, page, pageSize int) PageInfo {
	var totalPages int64
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return PageInfo{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
