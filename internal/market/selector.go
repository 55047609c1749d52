package market

import (
	"math"
	"sort"
	"time"
)

const (
	distanceWeight = 0.7
	timeWeight     = 0.3
)

// SelectMarket picks the single instance to trade this cycle. It groups the
// instances by settlement event, keeps the earliest event still in the future
// and returns its instance with the lowest score
//
//	0.7 × |strike − ref| / ref + 0.3 × minutesToSettlement / 60
//
// A nil result is the normal "no trade" outcome.
func SelectMarket(instances []Instance, referencePrice float64, now time.Time) *Selection {
	if referencePrice <= 0 || math.IsNaN(referencePrice) || len(instances) == 0 {
		return nil
	}

	events := make(map[string][]Instance)
	settles := make(map[string]time.Time)
	for _, inst := range instances {
		if inst.Strike <= 0 || inst.SettlementTime.IsZero() || !inst.SettlementTime.After(now) {
			continue
		}
		key := inst.EventID
		if key == "" {
			key = inst.SettlementTime.UTC().Format(time.RFC3339)
		}
		events[key] = append(events[key], inst)
		if cur, ok := settles[key]; !ok || inst.SettlementTime.Before(cur) {
			settles[key] = inst.SettlementTime
		}
	}
	if len(events) == 0 {
		return nil
	}

	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := settles[keys[i]], settles[keys[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return keys[i] < keys[j]
	})

	var (
		best      *Instance
		bestScore float64
	)
	for _, inst := range events[keys[0]] {
		inst := inst
		score := selectionScore(inst, referencePrice, now)
		if best == nil || score < bestScore || (score == bestScore && inst.Ticker < best.Ticker) {
			best = &inst
			bestScore = score
		}
	}

	distance := math.Abs(best.Strike - referencePrice)
	return &Selection{
		Instance:            *best,
		MinutesToSettlement: best.SettlementTime.Sub(now).Minutes(),
		Distance:            distance,
		DistancePct:         distance / referencePrice * 100,
	}
}

func selectionScore(inst Instance, ref float64, now time.Time) float64 {
	rel := math.Abs(inst.Strike-ref) / ref
	minutes := inst.SettlementTime.Sub(now).Minutes()
	return distanceWeight*rel + timeWeight*(minutes/60)
}
