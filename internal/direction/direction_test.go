package direction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-strategist/internal/model"
	"github.com/jonathan/content-strategist/internal/types"
)

// stubGateway records the last invocation and replies with a fixed outcome.
type stubGateway struct {
	last    model.Invocation
	outcome model.Outcome
}

func (s *stubGateway) Invoke(_ context.Context, inv model.Invocation) model.Outcome {
	s.last = inv
	return s.outcome
}

func (s *stubGateway) Close() error { return nil }

func TestBranchFor(t *testing.T) {
	tests := []struct {
		name      string
		styleType string
		want      Branch
	}{
		{"canonical evaluation", "测评类", BranchEvaluation},
		{"swapped evaluation stem", "评测类", BranchEvaluation},
		{"canonical seeding", "种草类", BranchSeeding},
		{"misspelled seeding stem", "中草类", BranchSeeding},
		{"embedded stem", "深度测评", BranchEvaluation},
		{"unknown", "剧情类", BranchUnknown},
		{"empty", "", BranchUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BranchFor(tt.styleType))
		})
	}
}

func TestDispatchUnknownStyleType(t *testing.T) {
	gw := &stubGateway{}
	result := Dispatch(context.Background(), gw, "剧情类", Inputs{})

	assert.True(t, result.Unknown)
	assert.Contains(t, result.Structured["error"], "未知的风格类型")
	assert.Empty(t, gw.last.UserPrompt, "no model call should happen for an unknown style type")
}

func TestEvaluateParsesShotList(t *testing.T) {
	gw := &stubGateway{outcome: model.Success(`{
		"分镜脚本": [
			{"镜号": "特写", "画面": "产品开箱", "口播": "今天测这款", "字幕": "开箱", "时长": "3s"},
			{"镜号": "中景", "画面": "上手对比", "口播": "手感如何", "字幕": "对比", "时长": "5s"}
		]
	}`)}

	result := Evaluate(context.Background(), gw, Inputs{
		Direction:     DirSingleReview,
		VideoOutline:  "开箱-体验-总结",
		SellingPoints: map[string]any{"核心卖点": "轻薄"},
	})

	require.Len(t, result.Shots, 2)
	assert.Equal(t, BranchEvaluation, result.Branch)
	assert.Equal(t, "特写", result.Shots[0].ShotType)
	assert.Equal(t, "上手对比", result.Shots[1].Visual)
	assert.Contains(t, gw.last.UserPrompt, "开箱-体验-总结")
	assert.Contains(t, gw.last.UserPrompt, "轻薄")
}

func TestEvaluateUnknownDirection(t *testing.T) {
	gw := &stubGateway{}
	result := Evaluate(context.Background(), gw, Inputs{Direction: "盲盒测评"})

	assert.True(t, result.Unknown)
	assert.Contains(t, result.Structured["error"], "未知的测评方向")
}

func TestEvaluateModelFailure(t *testing.T) {
	gw := &stubGateway{outcome: model.Fail(model.AuthError, "invalid API key")}
	result := Evaluate(context.Background(), gw, Inputs{Direction: DirHorizontal})

	assert.False(t, result.Unknown)
	assert.Empty(t, result.Shots)
	assert.Contains(t, result.Structured["error"], "invalid API key")
}

func TestSeedStructuredResult(t *testing.T) {
	gw := &stubGateway{outcome: model.Success(`{"标题": "秋日好物", "正文": "入手一周了"}`)}

	result := Seed(context.Background(), gw, Inputs{
		Direction:      DirUnboxing,
		AdditionalInfo: "强调性价比",
	})

	assert.Equal(t, BranchSeeding, result.Branch)
	assert.Equal(t, "seeding", result.Structured["content_type"])
	assert.Equal(t, DirUnboxing, result.Structured["direction"])
	assert.Equal(t, "强调性价比", result.Structured["additional_info"])

	inner, ok := result.Structured["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "秋日好物", inner["标题"])
}

func TestSeedTutorialGroupSharesTemplate(t *testing.T) {
	for _, dir := range []string{DirTutorialSkill, DirTutorialDIY, DirTutorialSolution} {
		t.Run(dir, func(t *testing.T) {
			gw := &stubGateway{outcome: model.Success(`{"标题": "x"}`)}
			result := Seed(context.Background(), gw, Inputs{Direction: dir})

			assert.False(t, result.Unknown)
			assert.Contains(t, gw.last.UserPrompt, dir,
				"tutorial prompt should interpolate the concrete direction label")
		})
	}
}

func TestSeedUnknownDirection(t *testing.T) {
	gw := &stubGateway{}
	result := Seed(context.Background(), gw, Inputs{Direction: "直播切片"})

	assert.True(t, result.Unknown)
	assert.Contains(t, result.Structured["error"], "未知的种草方向")
}

func TestResultPlanText(t *testing.T) {
	structured := Result{Structured: map[string]any{"内容钩子": "换季场景"}}
	assert.Contains(t, structured.PlanText(), "换季场景")

	shots := Result{Shots: types.ShotList{{ShotType: "特写", Visual: "产品上脸"}}}
	assert.Contains(t, shots.PlanText(), "shot_list")
	assert.Contains(t, shots.PlanText(), "产品上脸")

	assert.Empty(t, Result{}.PlanText())
}

func TestParseShotList(t *testing.T) {
	t.Run("fenced json under shot_list", func(t *testing.T) {
		shots := ParseShotList("```json\n{\"shot_list\": [{\"shot_type\": \"wide\", \"visual\": \"street\"}]}\n```")
		require.Len(t, shots, 1)
		assert.Equal(t, "wide", shots[0].ShotType)
	})

	t.Run("bare array wrapped under items", func(t *testing.T) {
		shots := ParseShotList(`[{"镜号": "近景", "口播": "看这里"}]`)
		require.Len(t, shots, 1)
		assert.Equal(t, "看这里", shots[0].Voiceover)
	})

	t.Run("single shot object", func(t *testing.T) {
		shots := ParseShotList(`{"镜号": "全景", "画面": "走进店里"}`)
		require.Len(t, shots, 1)
		assert.Equal(t, "走进店里", shots[0].Visual)
	})

	t.Run("prose answer yields empty list", func(t *testing.T) {
		shots := ParseShotList("好的，下面是我的分析。")
		assert.Empty(t, shots)
	})

	t.Run("non-object array entries skipped", func(t *testing.T) {
		shots := ParseShotList(`{"shots": ["just a string", {"visual": "桌面特写"}]}`)
		require.Len(t, shots, 1)
		assert.Equal(t, "桌面特写", shots[0].Visual)
	})
}

func TestEvaluationDirectionsOrdered(t *testing.T) {
	dirs := EvaluationDirections()
	assert.Equal(t, []string{DirSingleReview, DirHorizontal, DirBrandMatrix, DirAuthenticCheck}, dirs)
}

func TestSeedingDirectionsCoverTables(t *testing.T) {
	dirs := SeedingDirections()
	assert.Len(t, dirs, len(seedingTemplates)+len(tutorialDirections))
	for _, d := range dirs {
		_, hasOwn := seedingTemplates[d]
		assert.True(t, hasOwn || tutorialDirections[d], "direction %q has no template", d)
	}
	assert.True(t, strings.HasSuffix(dirs[len(dirs)-1], "教程干货"))
}
