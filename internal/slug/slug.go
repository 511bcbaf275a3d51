package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Checker はslugの衝突チェックだけを約束する。
// excludeID > 0 のときはそのレコード自身を除外して探す（更新用）。
type Checker interface {
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// キリル文字→ラテン文字の変換表。表にない文字はそのまま通す。
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ё': "e", 'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "c",
	'ч': "ch", 'ш': "sh", 'щ': "sch", 'ь': "", 'ы': "y", 'ъ': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	notAllowed = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Transliterate は表示名からベースslugを作る。
// 小文字化→変換表→許可外文字をハイフンに→連続ハイフンを1つに→端のハイフン除去。
func Transliterate(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	for _, r := range lower {
		if lat, ok := translit[r]; ok {
			b.WriteString(lat)
		} else {
			b.WriteRune(r)
		}
	}

	s := notAllowed.ReplaceAllString(b.String(), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// Generate は一意なslugを返す。
// ベースが衝突する間は "-1", "-2", … を付けて探し直す。
// 名前が全部落ちてベースが空になったら "tovar" を使う。
func Generate(ctx context.Context, c Checker, name string, excludeID int64) (string, error) {
	base := Transliterate(name)
	if base == "" {
		base = "tovar"
	}

	candidate := base
	counter := 1

	for {
		exists, err := c.ExistsBySlug(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}

		candidate = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}
