package jsonfile

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Выгрузки из старой БД хранят числа то числами, то строками ("37.54", "1").
// Типы ниже принимают оба варианта; пустая строка и null дают ноль.

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s, ok := rawScalar(data)
	if !ok || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(int64(f))
	return nil
}

// flexString принимает и строки, и числа ("3" и 3 для этажа)
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	v, _ := rawScalar(data)
	*s = flexString(v)
	return nil
}

// flexBool: true/false, "true"/"false", "Y"/"N" и числа (строкой или литералом), ненулевое - истина
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	v, ok := parseFlag(data)
	if !ok {
		*b = false
		return nil
	}
	*b = flexBool(v)
	return nil
}

func parseFlag(data []byte) (bool, bool) {
	s, ok := rawScalar(data)
	if !ok {
		return false, false
	}
	switch strings.ToLower(s) {
	case "1", "true", "y", "yes":
		return true, true
	case "0", "false", "n", "no", "":
		return false, true
	}
	// любое ненулевое число - истина, как и в колонке house_lifestyle
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v != 0 && !math.IsNaN(v), true
	}
	return false, false
}

// rawScalar достает текст скаляра: строку без кавычек или литерал числа/булева
func rawScalar(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return "", true
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '{', '[':
		return "", false
	}
	return string(data), true
}
