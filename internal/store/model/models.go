package model

import "gorm.io/datatypes"

// CycleModel maps to 'cycle_log': one row per engine cycle.
type CycleModel struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	TraceID    string         `gorm:"column:trace_id;uniqueIndex;size:64"`
	StartedAt  int64          `gorm:"column:started_at;index"` // unix ms
	FinishedAt int64          `gorm:"column:finished_at"`
	Outcome    string         `gorm:"column:outcome;index;size:32"`
	Ticker     string         `gorm:"column:ticker;size:128"`
	Side       string         `gorm:"column:side;size:8"`
	Confidence float64        `gorm:"column:confidence"`
	VetoKind   string         `gorm:"column:veto_kind;size:32"`
	Reason     string         `gorm:"column:reason"`
	OrderID    string         `gorm:"column:order_id;size:128"`
	Report     datatypes.JSON `gorm:"column:report;type:TEXT"`
	Attempts   []AttemptModel `gorm:"foreignKey:CycleID"`
}

func (CycleModel) TableName() string { return "cycle_log" }

// AttemptModel maps to 'order_attempt': one row per order submission.
type AttemptModel struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	CycleID       int64  `gorm:"column:cycle_id;index"`
	Number        int    `gorm:"column:number"`
	ClientOrderID string `gorm:"column:client_order_id;size:64"`
	Side          string `gorm:"column:side;size:8"`
	Count         int    `gorm:"column:count"`
	PriceCents    int    `gorm:"column:price_cents"`
	Outcome       string `gorm:"column:outcome;size:32"`
	StatusCode    int    `gorm:"column:status_code"`
	OrderID       string `gorm:"column:order_id;size:128"`
	Error         string `gorm:"column:error"`
	At            int64  `gorm:"column:at"` // unix ms
}

func (AttemptModel) TableName() string { return "order_attempt" }

// FiredHourModel maps to 'fired_hour': settlement hours the scheduler
// already triggered.
type FiredHourModel struct {
	Hour      int64 `gorm:"column:hour;primaryKey;autoIncrement:false"` // unix seconds, truncated to the hour
	CreatedAt int64 `gorm:"column:created_at"`
}

func (FiredHourModel) TableName() string { return "fired_hour" }
