package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Category     string       `gorm:"size:50;index" json:"category"` // ielts, toeic, toefl ...
	Level        string       `gorm:"size:20" json:"level"`
	Price        int64        `gorm:"default:0" json:"price"` // minor units
	TeacherID    uint         `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Status       CourseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	ThumbnailURL string       `gorm:"size:512" json:"thumbnailUrl"`
	Sections     []Section    `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
	Lessons      []Lesson     `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Section
type Section struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
}

func (Section) TableName() string {
	return "sections"
}

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonPDF   LessonType = "pdf"
	LessonAudio LessonType = "audio"
)

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID        uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	SectionID       *uint      `gorm:"index;type:bigint unsigned" json:"sectionId,omitempty"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Type            LessonType `gorm:"size:20;not null" json:"type"`
	AssetKey        string     `gorm:"size:512" json:"assetKey"`
	AssetURL        string     `gorm:"size:1024" json:"assetUrl"`
	DurationSeconds int        `gorm:"default:0" json:"durationSeconds"`
	Order           int        `gorm:"default:0" json:"order"`
	IsPreview       bool       `gorm:"default:false" json:"isPreview"`
}

func (Lesson) TableName() string {
	return "lessons"
}
