// Package i18n holds the user-facing message catalog.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fxapply/internal/domain"
)

// Message keys. The English text doubles as the key.
const (
	MsgAppliedEffect     = "Applied effect: %s"
	MsgNoAudioSelected   = "Select some audio before applying this effect."
	MsgMultipleClips     = "This effect cannot be applied to more than one clip at a time."
	MsgEffectBusy        = "The effect is already running."
	MsgRepeatUnavailable = "No effect has been applied yet."
	MsgEffectFailedTitle = "%s failed"
	MsgAcceptPrompt      = "Apply %s with these settings? [y/N/p=preview] "
	MsgSettingParam      = "%s (%v): "
)

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

func init() {
	entries := []struct {
		key string
		ja  string
	}{
		{MsgAppliedEffect, "エフェクトを適用: %s"},
		{MsgNoAudioSelected, "エフェクトを適用する前にオーディオを選択してください。"},
		{MsgMultipleClips, "このエフェクトは複数のクリップに同時に適用できません。"},
		{MsgEffectBusy, "このエフェクトは実行中です。"},
		{MsgRepeatUnavailable, "まだエフェクトが適用されていません。"},
		{MsgEffectFailedTitle, "%s に失敗しました"},
		{MsgAcceptPrompt, "%s をこの設定で適用しますか? [y/N/p=プレビュー] "},
		{MsgSettingParam, "%s (%v): "},
	}
	for _, e := range entries {
		_ = message.SetString(language.English, e.key, e.key)
		_ = message.SetString(language.Japanese, e.key, e.ja)
	}
}

// NewPrinter returns a printer for the closest supported language.
// Unknown or empty names fall back to English.
func NewPrinter(lang string) *message.Printer {
	tag := language.English
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, _ := matcher.Match(parsed)
			tag = supported[idx]
		}
	}
	return message.NewPrinter(tag)
}

// ErrorText returns the localized text for known failure codes and the
// error's own text otherwise.
func ErrorText(p *message.Printer, err error) string {
	if err == nil {
		return ""
	}
	switch domain.CodeOf(err) {
	case domain.CodeNoAudioSelected:
		return p.Sprintf(MsgNoAudioSelected)
	case domain.CodeMultipleClipSelectionNotSupported:
		return p.Sprintf(MsgMultipleClips)
	case domain.CodeEffectBusy:
		return p.Sprintf(MsgEffectBusy)
	default:
		return err.Error()
	}
}
