// Package normalize turns raw user queries into canonical search queries.
//
// Catalog text is recorded in either traditional or simplified script
// depending on the source of the record, so a query in one script must still
// match records in the other. Full script conversion is out of scope; only a
// curated table of high-frequency subject-vocabulary terms is mapped.
package normalize

import (
	"strings"

	"github.com/bookwise-discovery-api/internal/models"
)

// scriptTerms maps traditional-script terms to their simplified equivalents.
// Only multi-character terms that appear in the catalog's subject vocabulary
// are covered.
var scriptTerms = map[string]string{
	"小說":  "小说",
	"歷史":  "历史",
	"科學":  "科学",
	"文學":  "文学",
	"藝術":  "艺术",
	"哲學":  "哲学",
	"經濟":  "经济",
	"數學":  "数学",
	"電腦":  "电脑",
	"計算機": "计算机",
	"圖書":  "图书",
	"醫學":  "医学",
	"心理學": "心理学",
	"物理學": "物理学",
	"化學":  "化学",
	"傳記":  "传记",
	"詩歌":  "诗歌",
	"兒童":  "儿童",
	"漫畫":  "漫画",
	"武俠":  "武侠",
	"愛情":  "爱情",
	"戲劇":  "戏剧",
	"宗教":  "宗教",
	"旅遊":  "旅游",
	"烹飪":  "烹饪",
}

var scriptReplacer *strings.Replacer

func init() {
	pairs := make([]string, 0, len(scriptTerms)*2)
	for trad, simp := range scriptTerms {
		pairs = append(pairs, trad, simp)
	}
	scriptReplacer = strings.NewReplacer(pairs...)
}

// Normalize trims the raw query and derives its script-normalized variant.
// The variant equals the canonical form when no substitution applies.
// Returns ErrInvalidQuery when the query is empty after trimming.
func Normalize(raw string) (canonical, variant string, err error) {
	canonical = strings.TrimSpace(raw)
	if canonical == "" {
		return "", "", models.ErrInvalidQuery
	}
	variant = scriptReplacer.Replace(canonical)
	return canonical, variant, nil
}
