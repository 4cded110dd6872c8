package skill

import "sort"

// LanguageUsage 聚合后的单语言总字节数
type LanguageUsage struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Aggregate 按语言名（区分大小写）求和并按字节数降序排列。
// 字节数相同时保持首次出现的顺序；没有语言统计的仓库直接跳过。
// 入参须经 Repositories 解码校验：单语言总和不超过 int64。
func Aggregate(repos []Repository) []LanguageUsage {
	out := []LanguageUsage{}
	index := map[string]int{}
	for _, r := range repos {
		switch v := r.(type) {
		case RepoWithLanguages:
			for _, l := range v.Languages {
				i, ok := index[l.Name]
				if !ok {
					i = len(out)
					index[l.Name] = i
					out = append(out, LanguageUsage{Name: l.Name})
				}
				out[i].Bytes += l.Bytes
			}
		case RepoWithoutLanguages:
			// 无语言统计，不贡献任何条目
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bytes > out[j].Bytes })
	return out
}
