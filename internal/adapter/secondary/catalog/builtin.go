package catalog

import "fxapply/internal/domain"

// Parameter names understood by the timeline dispatcher.
const (
	ParamGain      = "gain"
	ParamTempo     = "tempo"
	ParamDelay     = "delay"
	ParamDecay     = "decay"
	ParamFrequency = "frequency"
	ParamAmplitude = "amplitude"
)

// Builtins returns the effects every catalog starts with.
func Builtins() []Entry {
	return []Entry{
		{
			Meta:   domain.EffectMeta{ID: "amplify", Title: "Amplify", Symbol: "Amplify", Type: domain.EffectTypeProcess, Interactive: true, SupportsMultiClip: true},
			Params: map[string]float64{ParamGain: 0},
		},
		{
			Meta: domain.EffectMeta{ID: "normalize", Title: "Normalize", Symbol: "Normalize", Type: domain.EffectTypeProcess, SupportsMultiClip: true},
		},
		{
			Meta: domain.EffectMeta{ID: "reverse", Title: "Reverse", Symbol: "Reverse", Type: domain.EffectTypeProcess, SupportsMultiClip: true},
		},
		{
			Meta:   domain.EffectMeta{ID: "echo", Title: "Echo", Symbol: "Echo", Type: domain.EffectTypeProcess, Interactive: true},
			Params: map[string]float64{ParamDelay: 1, ParamDecay: 0.5},
		},
		{
			Meta:   domain.EffectMeta{ID: "change-tempo", Title: "Change Tempo", Symbol: "ChangeTempo", Type: domain.EffectTypeProcess, Interactive: true},
			Params: map[string]float64{ParamTempo: 0},
		},
		{
			Meta:   domain.EffectMeta{ID: "tone", Title: "Tone", Symbol: "Tone", Type: domain.EffectTypeGenerate, Interactive: true, DefaultDuration: 30},
			Params: map[string]float64{ParamFrequency: 440, ParamAmplitude: 0.8},
		},
		{
			Meta:   domain.EffectMeta{ID: "noise", Title: "Noise", Symbol: "Noise", Type: domain.EffectTypeGenerate, DefaultDuration: 30},
			Params: map[string]float64{ParamAmplitude: 0.8},
		},
		{
			Meta: domain.EffectMeta{ID: "silence", Title: "Silence", Symbol: "Silence", Type: domain.EffectTypeGenerate, DefaultDuration: 30},
		},
		{
			Meta: domain.EffectMeta{ID: "find-clipping", Title: "Find Clipping", Symbol: "FindClipping", Type: domain.EffectTypeAnalyze, SupportsMultiClip: true},
		},
	}
}
