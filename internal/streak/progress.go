package streak

import "math"

// DistinctLessons 去重后的已完成课时数
func DistinctLessons(lessons []string) int {
	seen := make(map[string]struct{}, len(lessons))
	for _, l := range lessons {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// CourseProgress 课程完成百分比，范围 [0,100]
func CourseProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Floor(float64(completed)*100/float64(total) + 0.5))
}
