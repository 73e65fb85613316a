package streak

type MilestoneType string

const (
	MilestoneStreak    MilestoneType = "streak"
	MilestoneLessons   MilestoneType = "lessons"
	MilestoneCourses   MilestoneType = "courses"
	MilestoneStudyTime MilestoneType = "study-time"
)

// Milestone 成就里程碑
type Milestone struct {
	ID          string        `json:"id"`
	Type        MilestoneType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Threshold   int           `json:"threshold"`
	Achieved    bool          `json:"achieved"`
}

// Metrics 用于评估里程碑的当前指标
type Metrics struct {
	CurrentStreak  int `json:"currentStreak"`
	TotalLessons   int `json:"totalLessons"`
	TotalCourses   int `json:"totalCourses"`
	TotalStudyTime int `json:"totalStudyTime"` // 小时
}

// Value 返回该类型里程碑对应的指标值
func (m Metrics) Value(t MilestoneType) int {
	switch t {
	case MilestoneStreak:
		return m.CurrentStreak
	case MilestoneLessons:
		return m.TotalLessons
	case MilestoneCourses:
		return m.TotalCourses
	case MilestoneStudyTime:
		return m.TotalStudyTime
	}
	return 0
}

// 固定的里程碑目录，顺序即返回顺序
var catalog = []Milestone{
	{ID: "streak-3", Type: MilestoneStreak, Title: "Getting Started", Description: "Learn 3 days in a row", Icon: "🔥", Threshold: 3},
	{ID: "streak-7", Type: MilestoneStreak, Title: "Week Warrior", Description: "Learn 7 days in a row", Icon: "⚡", Threshold: 7},
	{ID: "streak-14", Type: MilestoneStreak, Title: "Two Week Champion", Description: "Learn 14 days in a row", Icon: "💪", Threshold: 14},
	{ID: "streak-30", Type: MilestoneStreak, Title: "Monthly Master", Description: "Learn 30 days in a row", Icon: "👑", Threshold: 30},
	{ID: "lessons-10", Type: MilestoneLessons, Title: "Knowledge Seeker", Description: "Complete 10 lessons", Icon: "📚", Threshold: 10},
	{ID: "lessons-25", Type: MilestoneLessons, Title: "Dedicated Learner", Description: "Complete 25 lessons", Icon: "🎯", Threshold: 25},
	{ID: "lessons-50", Type: MilestoneLessons, Title: "Learning Machine", Description: "Complete 50 lessons", Icon: "🚀", Threshold: 50},
	{ID: "lessons-100", Type: MilestoneLessons, Title: "Century Scholar", Description: "Complete 100 lessons", Icon: "🏆", Threshold: 100},
	{ID: "courses-3", Type: MilestoneCourses, Title: "Explorer", Description: "Start 3 different courses", Icon: "🧭", Threshold: 3},
	{ID: "courses-5", Type: MilestoneCourses, Title: "Polymath", Description: "Start 5 different courses", Icon: "🌟", Threshold: 5},
	{ID: "study-5", Type: MilestoneStudyTime, Title: "Focused Mind", Description: "Study for 5 hours", Icon: "⏰", Threshold: 5},
	{ID: "study-10", Type: MilestoneStudyTime, Title: "Time Investor", Description: "Study for 10 hours", Icon: "⌛", Threshold: 10},
	{ID: "study-25", Type: MilestoneStudyTime, Title: "Deep Diver", Description: "Study for 25 hours", Icon: "🧠", Threshold: 25},
	{ID: "study-50", Type: MilestoneStudyTime, Title: "Master of Time", Description: "Study for 50 hours", Icon: "💎", Threshold: 50},
}

// Catalog 返回里程碑目录的副本，Achieved 均为 false
func Catalog() []Milestone {
	out := make([]Milestone, len(catalog))
	copy(out, catalog)
	return out
}

// EvaluateMilestones 按当前指标计算每个里程碑是否达成
func EvaluateMilestones(m Metrics) []Milestone {
	milestones := Catalog()
	for i := range milestones {
		milestones[i].Achieved = m.Value(milestones[i].Type) >= milestones[i].Threshold
	}
	return milestones
}

// CheckNewMilestones 返回在 newMilestones 中已达成、而在 oldMilestones 中
// 不存在或未达成的里程碑
func CheckNewMilestones(oldMilestones, newMilestones []Milestone) []Milestone {
	previously := make(map[string]bool, len(oldMilestones))
	for _, m := range oldMilestones {
		previously[m.ID] = m.Achieved
	}

	var unlocked []Milestone
	for _, m := range newMilestones {
		if m.Achieved && !previously[m.ID] {
			unlocked = append(unlocked, m)
		}
	}
	return unlocked
}
