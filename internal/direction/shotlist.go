package direction

import (
	"github.com/jonathan/content-strategist/internal/normalize"
	"github.com/jonathan/content-strategist/internal/types"
)

// shotListKeys are the top-level keys a model answer may hang its shot array
// under, probed in order.
var shotListKeys = []string{"分镜脚本", "shot_list", "shots", "分镜", normalize.KeyItems}

// Field aliases observed across model answers. Chinese field names come from
// the prompt templates; English ones appear when the model answers in schema
// terms instead.
var (
	shotTypeAliases  = []string{"shot_type", "镜号", "景别"}
	visualAliases    = []string{"visual", "画面", "画面描述"}
	voiceoverAliases = []string{"voiceover", "口播", "台词", "口播文案"}
	captionAliases   = []string{"caption", "字幕", "配文"}
	durationAliases  = []string{"duration", "时长"}
	notesAliases     = []string{"notes", "备注"}
)

// ParseShotList normalizes a raw model answer and extracts a shot list from
// it. A single shot object is wrapped into a one-entry list; an answer with
// no recognizable shot structure yields an empty list, never an error.
func ParseShotList(raw string) types.ShotList {
	m := normalize.Normalize(raw)

	for _, key := range shotListKeys {
		arr, ok := m[key].([]any)
		if !ok {
			continue
		}
		var shots types.ShotList
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			shots = append(shots, shotFromObject(obj))
		}
		if len(shots) > 0 {
			return shots
		}
	}

	if looksLikeShot(m) {
		return types.ShotList{shotFromObject(m)}
	}
	return nil
}

func shotFromObject(obj map[string]any) types.ShotEntry {
	first := func(aliases []string) string {
		s, _ := normalize.FirstString(obj, aliases...)
		return s
	}
	return types.ShotEntry{
		ShotType:  first(shotTypeAliases),
		Visual:    first(visualAliases),
		Voiceover: first(voiceoverAliases),
		Caption:   first(captionAliases),
		Duration:  first(durationAliases),
		Notes:     first(notesAliases),
	}
}

// looksLikeShot reports whether a lone object carries any shot field, which
// happens when the model answers with a single shot instead of an array.
func looksLikeShot(m map[string]any) bool {
	for _, key := range []string{"镜号", "景别", "画面", "口播", "shot_type", "visual"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}
