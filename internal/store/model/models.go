package model

import (
	"database/sql"
	"time"
)

// RequestLog captures the full detail of a completed gateway request,
// chat or image, streamed or not.
type RequestLog struct {
	ID              string         `db:"id" json:"id"`
	Kind            string         `db:"kind" json:"kind"` // 'chat', 'image'
	ProviderID      string         `db:"provider_id" json:"provider_id"`
	ModelID         string         `db:"model_id" json:"model_id"`
	UpstreamModelID string         `db:"upstream_model_id" json:"upstream_model_id"`
	FinishReason    sql.NullString `db:"finish_reason" json:"finish_reason,omitempty"`
	ErrorKind       sql.NullString `db:"error_kind" json:"error_kind,omitempty"`
	InputTokens     int            `db:"input_tokens" json:"input_tokens"`
	OutputTokens    int            `db:"output_tokens" json:"output_tokens"`
	LatencyMs       int64          `db:"latency_ms" json:"latency_ms"`
	TTFTMs          sql.NullInt64  `db:"ttft_ms" json:"ttft_ms,omitempty"` // first-token latency, streamed only
	StatusCode      int            `db:"status_code" json:"status_code"`
	IsStreamed      bool           `db:"is_streamed" json:"is_streamed"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// DailyStats is an aggregated view over request_logs.
type DailyStats struct {
	Date          string  `db:"date" json:"date"`
	TotalRequests int64   `db:"total_requests" json:"total_requests"`
	TotalTokens   int64   `db:"total_tokens" json:"total_tokens"`
	AvgLatency    float64 `db:"avg_latency" json:"avg_latency"`
}
