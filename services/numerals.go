package services

import (
	"regexp"
	"strconv"
)

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var chineseUnits = map[rune]int{
	'十': 10,
	'百': 100,
	'千': 1000,
	'萬': 10000,
}

var chineseNumeralPattern = regexp.MustCompile(`[零一二兩三四五六七八九十百千萬]+`)

// ChineseToArabic converts a Chinese numeral string such as 三千五百萬 to its
// integer value. Characters outside the numeral alphabet are skipped.
func ChineseToArabic(s string) int {
	total := 0
	section := 0
	number := 0

	for _, r := range s {
		if digit, ok := chineseDigits[r]; ok {
			number = digit
			continue
		}

		unit, ok := chineseUnits[r]
		if !ok {
			continue
		}

		if unit == 10000 {
			section += number
			total += section * unit
			section = 0
		} else {
			// A bare unit counts as one of it, e.g. 十五 is 15
			if number == 0 {
				number = 1
			}
			section += number * unit
		}
		number = 0
	}

	return total + section + number
}

// ConvertChineseNumerals replaces every Chinese numeral run in text with its
// Arabic form so inventory keyword search sees 2000000 instead of 兩百萬. Runs
// that evaluate to zero are left untouched.
func ConvertChineseNumerals(text string) string {
	return chineseNumeralPattern.ReplaceAllStringFunc(text, func(match string) string {
		if n := ChineseToArabic(match); n > 0 {
			return strconv.Itoa(n)
		}
		return match
	})
}
