// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package dashboard

import (
	"math"

	"github.com/tomtom215/accessboard/internal/models"
)

// ComputeDeltas compares today against yesterday slot by slot. Slots at or
// beyond observed have not started yet and are flagged as unobserved.
//
// A slot with no traffic yesterday reports 100% when today has traffic and
// 0% otherwise. Percentages round half up.
func ComputeDeltas(today, yesterday models.DaySlots, observed int) []models.SlotDelta {
	deltas := make([]models.SlotDelta, len(today))
	for i, slot := range today {
		prev := 0
		if i < len(yesterday) {
			prev = yesterday[i].AccessCount
		}
		deltas[i] = delta(slot, prev)
		deltas[i].Observed = i < observed
	}
	return deltas
}

func delta(slot models.DaySlot, yesterday int) models.SlotDelta {
	d := models.SlotDelta{Hour: slot.Hour, Minute: slot.Minute}

	if yesterday == 0 {
		if slot.AccessCount > 0 {
			d.Percentage = 100
			d.IsGain = true
		}
		return d
	}

	pct := float64(slot.AccessCount-yesterday) / float64(yesterday) * 100
	d.Percentage = int(math.Floor(pct + 0.5))
	d.IsGain = pct >= 0
	return d
}
