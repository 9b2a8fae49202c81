package nintendo

import (
	"os"
	"strings"
)

// Wii banner language slots. The channel banner stores ten localized names
// indexed by these values.
const (
	LangJapanese    = 0
	LangEnglish     = 1
	LangGerman      = 2
	LangFrench      = 3
	LangSpanish     = 4
	LangItalian     = 5
	LangDutch       = 6
	LangSimpChinese = 7
	LangTradChinese = 8
	LangKorean      = 9

	LangMax = 10
)

// WiiLanguage picks the banner language slot for the current process locale.
func WiiLanguage() int {
	return WiiLanguageFromLocale(processLocale())
}

// WiiLanguageFromLocale maps a POSIX locale string ("de_DE.UTF-8") to a
// banner language slot. Unknown locales read the English name, which every
// banner is expected to carry.
func WiiLanguageFromLocale(locale string) int {
	lang, region := splitLocale(locale)
	switch lang {
	case "ja":
		return LangJapanese
	case "en":
		return LangEnglish
	case "de":
		return LangGerman
	case "fr":
		return LangFrench
	case "es":
		return LangSpanish
	case "it":
		return LangItalian
	case "nl":
		return LangDutch
	case "ko":
		return LangKorean
	case "zh":
		if region == "TW" || region == "HK" {
			return LangTradChinese
		}
		return LangSimpChinese
	default:
		return LangEnglish
	}
}

func processLocale() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func splitLocale(locale string) (lang, region string) {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	lang, region, _ = strings.Cut(locale, "_")
	return strings.ToLower(lang), strings.ToUpper(region)
}
