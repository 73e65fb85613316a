package streak

import (
	"math"
	"sort"
	"time"
)

const (
	// MaxStreakLookback 计算当前连续天数时最多向前回溯的天数
	MaxStreakLookback = 30
	// HoursPerLesson 每节课按 30 分钟估算学习时长
	HoursPerLesson = 0.5
)

// ProgressRecord 单门课程的学习进度快照
type ProgressRecord struct {
	CourseID         string     `json:"courseId"`
	CompletedLessons []string   `json:"completedLessons"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// LearningStreak 学习连续天数统计结果
type LearningStreak struct {
	CurrentStreak    int         `json:"currentStreak"`
	LongestStreak    int         `json:"longestStreak"`
	LastActivityDate *Day        `json:"lastActivityDate"`
	TotalActiveDays  int         `json:"totalActiveDays"`
	Milestones       []Milestone `json:"milestones"`
}

// Calculate 根据进度记录计算学习连续天数与里程碑。
// now 的时区即为日期划分所用的参考时区。
func Calculate(records []ProgressRecord, now time.Time) LearningStreak {
	return CalculateFromDays(ActivityDays(records, now), records, now)
}

// ActivityDays 提取有学习活动的日期集合（去重、升序）。
// completedAt 只在整门课完成时才会写入，因此当没有任何日期但已完成过课时，
// 将今天视为活跃日。这只是近似值，并非精确的每日记录。
func ActivityDays(records []ProgressRecord, now time.Time) []Day {
	seen := make(map[Day]struct{})
	for _, r := range records {
		if r.CompletedAt == nil {
			continue
		}
		seen[DayOf(r.CompletedAt.In(now.Location()))] = struct{}{}
	}

	if len(seen) == 0 && TotalLessons(records) > 0 {
		seen[DayOf(now)] = struct{}{}
	}

	days := make([]Day, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// CalculateFromDays 使用给定的活跃日期集合计算结果，records 仅用于里程碑指标
func CalculateFromDays(days []Day, records []ProgressRecord, now time.Time) LearningStreak {
	active := make(map[Day]struct{}, len(days))
	for _, d := range days {
		active[d] = struct{}{}
	}

	result := LearningStreak{}
	if len(active) > 0 {
		result.CurrentStreak, result.LastActivityDate = currentStreak(active, DayOf(now))
		result.LongestStreak = longestStreak(active)
		result.TotalActiveDays = len(active)
	}

	lessons := TotalLessons(records)
	result.Milestones = EvaluateMilestones(Metrics{
		CurrentStreak:  result.CurrentStreak,
		TotalLessons:   lessons,
		TotalCourses:   len(records),
		TotalStudyTime: StudyHours(lessons),
	})
	return result
}

// 从今天往前逐日扫描；已计数后遇到空缺即停止，计数前的空缺直接跳过
func currentStreak(active map[Day]struct{}, today Day) (int, *Day) {
	count := 0
	var last *Day
	for i := 0; i < MaxStreakLookback; i++ {
		d := today.AddDays(-i)
		if _, ok := active[d]; ok {
			if last == nil {
				last = &d
			}
			count++
		} else if count > 0 {
			break
		}
	}
	return count, last
}

func longestStreak(active map[Day]struct{}) int {
	days := make([]Day, 0, len(active))
	for d := range active {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	longest, run := 0, 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	return max(longest, run)
}

// TotalLessons 所有记录的已完成课时数之和（不去重）
func TotalLessons(records []ProgressRecord) int {
	total := 0
	for _, r := range records {
		total += len(r.CompletedLessons)
	}
	return total
}

// StudyHours 估算学习小时数，四舍五入（.5 向上）
func StudyHours(lessons int) int {
	return int(math.Floor(float64(lessons)*HoursPerLesson + 0.5))
}
