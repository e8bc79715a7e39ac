package usecase

import (
	"context"

	"golang.org/x/text/message"

	"fxapply/internal/domain"
	"fxapply/internal/i18n"
)

// HistoryRecorder writes one undo entry per applied effect.
type HistoryRecorder struct {
	log     domain.HistoryLog
	printer *message.Printer
}

// NewHistoryRecorder creates a recorder. A nil printer means English.
func NewHistoryRecorder(log domain.HistoryLog, printer *message.Printer) *HistoryRecorder {
	if printer == nil {
		printer = i18n.NewPrinter("")
	}
	return &HistoryRecorder{log: log, printer: printer}
}

// Record appends the entry for meta. The short description is the effect's
// display name.
func (h *HistoryRecorder) Record(ctx context.Context, meta domain.EffectMeta) error {
	short := displayName(meta)
	long := h.printer.Sprintf(i18n.MsgAppliedEffect, short)
	return h.log.PushEntry(ctx, long, short)
}

func displayName(meta domain.EffectMeta) string {
	if meta.Title != "" {
		return meta.Title
	}
	return string(meta.ID)
}
