package dummydb

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sodiem/core/gradebook"
)

func setup(t *testing.T) gradebook.Repository {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	db.Seed(gradebook.SeedClasses()...)
	return NewClassRepository(db)
}

func TestClassRepository_returnsCopies(t *testing.T) {
	repo := setup(t)

	stu, err := repo.GetStudent("10A1", "10A1-023")
	assert.NoError(t, err)
	stu.Name = "changed"
	*stu.Grades[0].Score = 0

	cls, err := repo.GetClass("10A1")
	assert.NoError(t, err)
	assert.Equal(t, "Nguyễn Minh An", cls.Students[0].Name)
	assert.Equal(t, 9.0, *cls.Students[0].Grades[0].Score)
}

func TestClassRepository_EnsureClass(t *testing.T) {
	repo := setup(t)

	cls, created, err := repo.EnsureClass("10A1")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, cls.Students, 2)

	cls, created, err = repo.EnsureClass("11B")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, cls.Students)

	classes, err := repo.QueryClasses()
	assert.NoError(t, err)
	assert.Equal(t, "10A1", classes[0].ID)
	assert.Equal(t, "11B", classes[1].ID)

	_, err = repo.GetClass("9Z")
	assert.Equal(t, gradebook.ErrClassNotFound, err)
}

func TestClassRepository_UpdateStudent(t *testing.T) {
	repo := setup(t)

	_, err := repo.UpdateStudent("10A1", "nope", func(stu *gradebook.Student) error { return nil })
	assert.Equal(t, gradebook.ErrStudentNotFound, err)

	errBoom := errors.New("boom")
	_, err = repo.UpdateStudent("10A1", "10A1-023", func(stu *gradebook.Student) error {
		stu.Name = "discarded"
		return errBoom
	})
	assert.Equal(t, errBoom, err)

	stu, err := repo.UpdateStudent("10A1", "10A1-023", func(stu *gradebook.Student) error {
		stu.Code = "ignored"
		stu.Name = "An"
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "10A1-023", stu.Code)

	stored, err := repo.GetStudent("10A1", "10A1-023")
	assert.NoError(t, err)
	assert.Equal(t, "An", stored.Name)
}

func TestClassRepository_UpdateOrCreateStudent(t *testing.T) {
	repo := setup(t)

	// failing callback stores nothing, not even the class
	_, _, err := repo.UpdateOrCreateStudent("11B", "11B-001", func(stu *gradebook.Student, existed bool) error {
		return errors.New("boom")
	})
	assert.Error(t, err)
	_, err = repo.GetClass("11B")
	assert.Equal(t, gradebook.ErrClassNotFound, err)

	stu, existed, err := repo.UpdateOrCreateStudent("11B", "11B-001", func(stu *gradebook.Student, existed bool) error {
		stu.Name = "Mới"
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, gradebook.Student{Code: "11B-001", Name: "Mới", Grades: []gradebook.Grade{}}, stu)

	_, existed, err = repo.UpdateOrCreateStudent("11B", "11B-001", func(stu *gradebook.Student, existed bool) error {
		assert.Equal(t, "Mới", stu.Name)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, existed)

	cls, _ := repo.GetClass("11B")
	assert.Len(t, cls.Students, 1)
}

func TestClassRepository_concurrentUpdates(t *testing.T) {
	repo := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = repo.UpdateOrCreateStudent("12C", fmt.Sprintf("12C-%03d", i%10), func(stu *gradebook.Student, _ bool) error {
				gradebook.ApplyGrade(stu, "quad", gradebook.GradePatch{Progress: gradebook.Float(float64(i))})
				return nil
			})
			_, _ = repo.GetClass("12C")
		}(i)
	}
	wg.Wait()

	cls, err := repo.GetClass("12C")
	assert.NoError(t, err)
	assert.Len(t, cls.Students, 10)
	for _, stu := range cls.Students {
		assert.Len(t, stu.Grades, 1)
	}
}
