// Package skill turns a LAPRAS-style career profile into a ranked
// language usage summary.
package skill

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// LanguageBytes 单个仓库内某语言的字节数
type LanguageBytes struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Repository 仓库记录是封闭的和类型：要么带语言统计，要么没有
type Repository interface{ isRepository() }

type RepoWithLanguages struct {
	Name      string
	Languages []LanguageBytes
}

type RepoWithoutLanguages struct {
	Name string
}

func (RepoWithLanguages) isRepository()    {}
func (RepoWithoutLanguages) isRepository() {}

// Repositories 按 languages 字段是否存在/为 null 解码成对应变体
type Repositories []Repository

func (rs *Repositories) UnmarshalJSON(b []byte) error {
	var raw []struct {
		Title     string           `json:"title"`
		Languages *[]LanguageBytes `json:"languages"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Repositories, 0, len(raw))
	// 按语言累计，保证 Aggregate 求和不会溢出
	totals := map[string]int64{}
	for i, r := range raw {
		if r.Languages == nil {
			out = append(out, RepoWithoutLanguages{Name: r.Title})
			continue
		}
		for _, l := range *r.Languages {
			if l.Bytes < 0 {
				return errors.Errorf("repository %d: negative bytes for %q", i, l.Name)
			}
			if totals[l.Name] > math.MaxInt64-l.Bytes {
				return errors.Errorf("repository %d: total bytes for %q overflow int64", i, l.Name)
			}
			totals[l.Name] += l.Bytes
		}
		out = append(out, RepoWithLanguages{Name: r.Title, Languages: *r.Languages})
	}
	*rs = out
	return nil
}
