package main

import (
	"time"

	"gorm.io/gorm"

	"coursehub-backend/internal/model"
)

// seedCatalog loads a small demo course so the engine can be exercised
// without the authoring store. Idempotent: skipped when chapters exist.
func seedCatalog(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&model.Chapter{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	student := model.User{ID: 1, Username: "demo.student", Email: "student@example.com", FirstName: "Demo", LastName: "Student"}
	if err := conn.Create(&student).Error; err != nil {
		return err
	}

	chapters := []model.Chapter{
		{ID: 1, CourseID: 1, Title: "Getting Started", Position: 1, HasVideo: true, IsPublished: true},
		{ID: 2, CourseID: 1, Title: "Core Concepts", Position: 2, HasVideo: true, IsPublished: true},
	}
	if err := conn.Create(&chapters).Error; err != nil {
		return err
	}

	quizzes := []model.Quiz{
		{ID: 1, ChapterID: 1, CourseID: 1, Title: "Getting Started Quiz", IsPublished: true},
	}
	if err := conn.Create(&quizzes).Error; err != nil {
		return err
	}

	due := time.Now().UTC().Add(14 * 24 * time.Hour)
	assignments := []model.Assignment{
		{ID: 1, ChapterID: 2, CourseID: 1, Title: "Core Concepts Essay", Description: "Write 500 words on the core concepts.", DueDate: &due},
	}
	if err := conn.Create(&assignments).Error; err != nil {
		return err
	}

	exam := model.FinalExam{
		ID: 1, CourseID: 1, Title: "Final Exam", PassingScore: 70, IsPublished: true,
		Questions: []model.FinalExamQuestion{
			{Text: "Which chapter introduces the course?", Choices: []byte(`["Getting Started","Core Concepts"]`), CorrectAnswer: "Getting Started", Points: 1},
			{Text: "2 + 2 = ?", Choices: []byte(`["3","4","5"]`), CorrectAnswer: "4", Points: 1},
		},
	}
	if err := conn.Create(&exam).Error; err != nil {
		return err
	}

	policy := model.DefaultPolicy(1)
	return conn.Create(&policy).Error
}
