package matchmaker

// JoinRequest 入队请求；Address 取自 JWT
type JoinRequest struct {
	Address string `json:"-"`
	Pool    string `json:"pool"`                    // 空则使用默认池
	Seats   int    `json:"seats" binding:"required"` // 2..7
}

// JoinResponse 返回是否已成桌；若已成桌则给出桌子信息
type JoinResponse struct {
	Queued  bool     `json:"queued"`
	TableID string   `json:"tableId,omitempty"`
	Players []string `json:"players,omitempty"`
	Pool    string   `json:"pool"`
	Seats   int      `json:"seats"`
}
