package dummydb

import (
	"sort"

	"github.com/trezcool/sodiem/core/gradebook"
)

type classRepository struct {
	db *classTable
}

var _ gradebook.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) gradebook.Repository {
	return &classRepository{db: db.class}
}

// findStudent returns the stored student's index, or -1. Callers hold the lock.
func (repo *classRepository) findStudent(cls *gradebook.Class, code string) int {
	for i := range cls.Students {
		if cls.Students[i].Code == code {
			return i
		}
	}
	return -1
}

func (repo *classRepository) ensureClass(classID string) (*gradebook.Class, bool) {
	if cls, ok := repo.db.table[classID]; ok {
		return cls, false
	}
	cls := &gradebook.Class{ID: classID, Students: []gradebook.Student{}}
	repo.db.table[classID] = cls
	return cls, true
}

func (repo *classRepository) EnsureClass(classID string) (gradebook.Class, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, created := repo.ensureClass(classID)
	return cls.Clone(), created, nil
}

func (repo *classRepository) GetClass(classID string) (gradebook.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[classID]; ok {
		return cls.Clone(), nil
	}
	return gradebook.Class{}, gradebook.ErrClassNotFound
}

func (repo *classRepository) QueryClasses() ([]gradebook.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]gradebook.Class, 0, len(repo.db.table))
	for _, cls := range repo.db.table {
		classes = append(classes, cls.Clone())
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) GetStudent(classID, code string) (gradebook.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[classID]; ok {
		if i := repo.findStudent(cls, code); i >= 0 {
			return cls.Students[i].Clone(), nil
		}
	}
	return gradebook.Student{}, gradebook.ErrStudentNotFound
}

func (repo *classRepository) UpdateStudent(classID, code string, fn func(stu *gradebook.Student) error) (gradebook.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classID]
	if !ok {
		return gradebook.Student{}, gradebook.ErrStudentNotFound
	}
	i := repo.findStudent(cls, code)
	if i < 0 {
		return gradebook.Student{}, gradebook.ErrStudentNotFound
	}

	stu := cls.Students[i].Clone()
	if err := fn(&stu); err != nil {
		return gradebook.Student{}, err
	}
	stu.Code = code // the key is not updatable
	cls.Students[i] = stu
	return stu.Clone(), nil
}

func (repo *classRepository) UpdateOrCreateStudent(
	classID, code string,
	fn func(stu *gradebook.Student, existed bool) error,
) (gradebook.Student, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var stu gradebook.Student
	cls, ok := repo.db.table[classID]
	i := -1
	if ok {
		i = repo.findStudent(cls, code)
	}
	existed := i >= 0
	if existed {
		stu = cls.Students[i].Clone()
	} else {
		stu = gradebook.Student{Code: code, Grades: []gradebook.Grade{}}
	}

	if err := fn(&stu, existed); err != nil {
		return gradebook.Student{}, existed, err
	}
	stu.Code = code

	if existed {
		cls.Students[i] = stu
	} else {
		cls, _ = repo.ensureClass(classID)
		cls.Students = append(cls.Students, stu)
	}
	return stu.Clone(), existed, nil
}
