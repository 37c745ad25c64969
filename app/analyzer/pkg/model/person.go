package model

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Gender 规范化后的性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// ParseGender 把自由文本的性别归一到封闭枚举
//
// erkek / male / m → male；kadın / dişi / female / woman → female；其余 → unisex
func ParseGender(s string) Gender {
	s = strings.ToLower(strings.TrimSpace(s))
	r := []rune(s)
	if len(r) == 0 {
		return GenderUnisex
	}
	switch unicode.ToLower(r[0]) {
	case 'e', 'm':
		return GenderMale
	case 'k', 'd', 'f', 'w':
		return GenderFemale
	}
	return GenderUnisex
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// ParseAge 取年龄文本开头的数字，例如 "8 yaş" → 8
func ParseAge(s string) (int, bool) {
	m := leadingDigits.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	age, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return age, true
}

// GenderValue 规范化后的性别
func (p Person) GenderValue() Gender {
	return ParseGender(p.Gender.String())
}

// AgeYears 解析出的年龄
func (p Person) AgeYears() (int, bool) {
	return ParseAge(p.Age.String())
}
