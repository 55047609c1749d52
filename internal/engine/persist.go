package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"strikebot/internal/store"
	"strikebot/internal/store/model"
)

func toCycleModel(r Report) (*model.CycleModel, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	m := &model.CycleModel{
		TraceID:    r.TraceID,
		StartedAt:  r.StartedAt.UnixMilli(),
		FinishedAt: r.FinishedAt.UnixMilli(),
		Outcome:    string(r.Outcome),
		Report:     datatypes.JSON(raw),
	}
	if r.Selection != nil {
		m.Ticker = r.Selection.Instance.Ticker
	}
	if r.Decision != nil {
		m.Side = string(r.Decision.Side)
		m.Confidence = r.Decision.Confidence
		m.Reason = r.Decision.Reason()
		if r.Decision.Veto != nil {
			m.VetoKind = string(r.Decision.Veto.Kind)
		}
	}
	if r.Execution != nil {
		m.OrderID = r.Execution.OrderID
		for _, a := range r.Execution.Attempts {
			m.Attempts = append(m.Attempts, model.AttemptModel{
				Number:        a.Number,
				ClientOrderID: a.ClientOrderID,
				Side:          string(a.Side),
				Count:         a.Count,
				PriceCents:    a.PriceCents,
				Outcome:       string(a.Outcome),
				StatusCode:    a.StatusCode,
				OrderID:       a.OrderID,
				Error:         a.Err,
				At:            a.At.UnixMilli(),
			})
		}
	}
	return m, nil
}

// saveReport writes the cycle and its attempts in one transaction.
func saveReport(ctx context.Context, st store.Store, r Report) error {
	m, err := toCycleModel(r)
	if err != nil {
		return err
	}
	uow, err := st.Begin(ctx)
	if err != nil {
		return err
	}
	if err := uow.Cycles().Save(ctx, m); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

// DecodeReport restores a persisted report.
func DecodeReport(m model.CycleModel) (Report, error) {
	var r Report
	if len(m.Report) == 0 {
		return r, fmt.Errorf("cycle %s has no report", m.TraceID)
	}
	if err := json.Unmarshal(m.Report, &r); err != nil {
		return r, fmt.Errorf("decode cycle %s: %w", m.TraceID, err)
	}
	return r, nil
}
