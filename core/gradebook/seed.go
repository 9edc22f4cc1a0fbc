package gradebook

// SeedClasses returns the demo class loaded at startup when seeding is enabled.
func SeedClasses() []Class {
	submitted := StatusSubmitted
	return []Class{
		{
			ID: "10A1",
			Students: []Student{
				{
					Code: "10A1-023", PIN: "1234", Name: "Nguyễn Minh An",
					Grades: []Grade{
						{LessonID: "cauchy1", Score: Float(9), Rank: Float(2), Total: Float(45), Status: submitted, Progress: 100},
						{LessonID: "quad", Total: Float(45), Status: StatusInProgress, Progress: 40},
						{LessonID: "combo", Total: Float(45), Status: StatusNotStarted},
					},
				},
				{
					Code: "10A1-005", PIN: "5678", Name: "Trần Thu Hà",
					Grades: []Grade{
						{LessonID: "cauchy1", Score: Float(7.75), Rank: Float(12), Total: Float(45), Status: submitted, Progress: 100},
						{LessonID: "quad", Score: Float(8.25), Rank: Float(6), Total: Float(45), Status: submitted, Progress: 100},
						{LessonID: "combo", Total: Float(45), Status: StatusNotStarted},
					},
				},
			},
		},
	}
}
