package streak

import (
	"encoding/json"
	"time"
)

const dayLayout = "2006-01-02"

// Day 表示一个日历日（1970-01-01 起的天数），不带时分秒和时区。
// 用整数表示可以避免夏令时导致的日期漂移。
type Day int

// DayOf 取 t 在其自身时区下的日期部分
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// ParseDay 解析 2006-01-02 格式的日期
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return 0, err
	}
	return DayOf(t), nil
}

// DaysBetween 返回 b - a 的天数
func DaysBetween(a, b Day) int {
	return int(b - a)
}

func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// Time 返回该日 UTC 零点
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format(dayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
