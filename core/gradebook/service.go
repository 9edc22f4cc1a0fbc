package gradebook

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/sodiem/core"
)

var (
	// errors
	ErrClassNotFound   = errors.New("Không có lớp")
	ErrStudentNotFound = errors.New("Không thấy học sinh")
	ErrUnknownStudent  = errors.New("Không tìm thấy mã học sinh")
	ErrInvalidPIN      = errors.New("Sai PIN")
)

type (
	// Repository stores classes and their students. Implementations must return copies
	// and run each mutation callback atomically.
	Repository interface {
		// EnsureClass returns the class, creating an empty one if missing.
		EnsureClass(classID string) (cls Class, created bool, err error)
		GetClass(classID string) (Class, error)
		QueryClasses() ([]Class, error)
		GetStudent(classID, code string) (Student, error)
		// UpdateStudent applies fn to an existing student; ErrStudentNotFound if missing.
		UpdateStudent(classID, code string, fn func(stu *Student) error) (Student, error)
		// UpdateOrCreateStudent applies fn to the student, creating the class and the student when missing.
		// Nothing is stored if fn returns an error.
		UpdateOrCreateStudent(classID, code string, fn func(stu *Student, existed bool) error) (stu Student, existed bool, err error)
	}

	ServiceInterface interface {
		Lessons() Catalog
		EnsureClass(classID string) (Class, error)
		EnsureStudent(classID, code string, attrs StudentAttrs) (Student, bool, error)
		FindStudent(classID, code string) (Student, error)
		UpsertGrade(classID, code, lessonID string, patch GradePatch) (Grade, bool, error)
		ClassGrades(classID string) ([]GradeRow, error)
		Classes() ([]ClassSummary, error)
		StudentProgress(classID, code string) (int, error)
		AuthenticateStudent(classID, code, pin string) (Student, error)
		Import(records []ImportRecord) ImportSummary
		ExportRows(classID string) ([]ExportRow, error)
	}

	Service struct {
		repo      Repository
		catalog   Catalog
		validate  *validator.Validate
		strictPIN bool
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, catalog Catalog, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		validate:  validate,
		strictPIN: conf.Auth.StrictPIN,
	}
}

func (svc *Service) Lessons() Catalog {
	lessons := make(Catalog, len(svc.catalog))
	copy(lessons, svc.catalog)
	return lessons
}

func (svc *Service) EnsureClass(classID string) (Class, error) {
	cls, _, err := svc.repo.EnsureClass(classID)
	return cls, errors.Wrap(err, "ensuring class")
}

// EnsureStudent returns the student, creating it (and its class) if missing; existed reports which.
func (svc *Service) EnsureStudent(classID, code string, attrs StudentAttrs) (Student, bool, error) {
	stu, existed, err := svc.repo.UpdateOrCreateStudent(classID, code, func(stu *Student, _ bool) error {
		stu.applyAttrs(attrs)
		return nil
	})
	if err != nil {
		return Student{}, false, errors.Wrap(err, "ensuring student")
	}
	return stu, existed, nil
}

func (svc *Service) FindStudent(classID, code string) (Student, error) {
	return svc.repo.GetStudent(classID, code)
}

// UpsertGrade applies the patch to an existing student's grade, creating the grade if needed.
func (svc *Service) UpsertGrade(classID, code, lessonID string, patch GradePatch) (Grade, bool, error) {
	var grade Grade
	var created bool
	_, err := svc.repo.UpdateStudent(classID, code, func(stu *Student) error {
		grade, created = ApplyGrade(stu, lessonID, patch)
		return nil
	})
	if err != nil {
		return Grade{}, false, err
	}
	return grade, created, nil
}

func (svc *Service) ClassGrades(classID string) ([]GradeRow, error) {
	cls, err := svc.repo.GetClass(classID)
	if err != nil {
		return nil, err
	}
	return cls.Rows(), nil
}

func (svc *Service) Classes() ([]ClassSummary, error) {
	classes, err := svc.repo.QueryClasses()
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return summarize(classes), nil
}

// StudentProgress is the rounded mean progress over the student's grades (0 without grades).
func (svc *Service) StudentProgress(classID, code string) (int, error) {
	stu, err := svc.repo.GetStudent(classID, code)
	if err != nil {
		return 0, err
	}
	return Progress(stu.Grades), nil
}

// Progress is the rounded mean progress of grades, 0 when empty.
func Progress(grades []Grade) int {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Progress
	}
	return int(math.Round(sum / float64(len(grades))))
}

// AuthenticateStudent checks the student credentials.
// A student without a PIN on file, or a login without a PIN, skips the PIN check unless strictPIN is on.
func (svc *Service) AuthenticateStudent(classID, code, pin string) (Student, error) {
	stu, err := svc.repo.GetStudent(classID, code)
	if err != nil {
		if errors.Cause(err) == ErrStudentNotFound || errors.Cause(err) == ErrClassNotFound {
			return Student{}, ErrUnknownStudent
		}
		return Student{}, errors.Wrap(err, "finding student")
	}
	if stu.PIN == "" {
		return stu, nil
	}
	if pin == "" && !svc.strictPIN {
		return stu, nil
	}
	if pin != stu.PIN {
		return Student{}, ErrInvalidPIN
	}
	return stu, nil
}
