package skill

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Profile LAPRAS 公开档案中用到的字段
type Profile struct {
	Name         string
	EScore       float64
	BScore       float64
	IScore       float64
	Repositories Repositories
}

// Summary 对外返回的技能概览
type Summary struct {
	Username string          `json:"username"`
	EScore   float64         `json:"e_score"`
	BScore   float64         `json:"b_score"`
	IScore   float64         `json:"i_score"`
	Language []LanguageUsage `json:"language"`
}

// DecodeProfile 缺少任一必需字段都视为格式错误，不做默认值兜底
func DecodeProfile(b []byte) (*Profile, error) {
	var raw struct {
		Name         *string       `json:"name"`
		EScore       *float64      `json:"e_score"`
		BScore       *float64      `json:"b_score"`
		IScore       *float64      `json:"i_score"`
		Repositories *Repositories `json:"github_repositories"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	switch {
	case raw.Name == nil:
		return nil, errors.New("profile: missing name")
	case raw.EScore == nil || raw.BScore == nil || raw.IScore == nil:
		return nil, errors.New("profile: missing score")
	case raw.Repositories == nil:
		return nil, errors.New("profile: missing github_repositories")
	}
	return &Profile{
		Name:         *raw.Name,
		EScore:       *raw.EScore,
		BScore:       *raw.BScore,
		IScore:       *raw.IScore,
		Repositories: *raw.Repositories,
	}, nil
}

func Summarize(p *Profile) Summary {
	return Summary{
		Username: p.Name,
		EScore:   p.EScore,
		BScore:   p.BScore,
		IScore:   p.IScore,
		Language: Aggregate(p.Repositories),
	}
}
