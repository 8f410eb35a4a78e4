package sample

import (
	"context"
	"time"

	"atelier/pkg/catalog"
	"atelier/pkg/models"
)

// Seed adds the demo agenda and catalog around ref. It does not clear
// existing data.
func (s *Store) Seed(ref time.Time) {
	ref = ref.In(s.loc)
	day := func(offset, hour, min int) time.Time {
		return time.Date(ref.Year(), ref.Month(), ref.Day()+offset, hour, min, 0, 0, s.loc)
	}
	intPtr := func(v int) *int { return &v }
	timePtr := func(t time.Time) *time.Time { return &t }

	opening := s.mustEvent(models.Event{
		Title:        "Spring exhibition opening",
		Description:  "Vernissage of the new series",
		Type:         models.EventExhibition,
		StartDate:    day(7, 18, 0),
		EndDate:      day(7, 22, 0),
		Location:     "Main gallery",
		Participants: []string{"Curator", "Press"},
		Reminder:     &models.Reminder{Enabled: true, MinutesBefore: 120},
		Status:       models.EventConfirmed,
	})
	s.mustEvent(models.Event{
		Title:        "Collector meeting",
		Type:         models.EventMeeting,
		StartDate:    day(0, 14, 0),
		EndDate:      day(0, 15, 0),
		Location:     "Studio",
		Participants: []string{"M. Laurent"},
		Status:       models.EventScheduled,
	})
	s.mustEvent(models.Event{
		Title:     "Catalogue proofs due",
		Type:      models.EventDeadline,
		StartDate: day(3, 0, 0),
		IsAllDay:  true,
		Status:    models.EventScheduled,
	})
	s.mustEvent(models.Event{
		Title:     "Watercolour workshop",
		Type:      models.EventWorkshop,
		StartDate: day(-4, 10, 0),
		EndDate:   day(-4, 13, 0),
		Location:  "Studio",
		Status:    models.EventCompleted,
	})
	s.mustEvent(models.Event{
		Title:     "Framer pickup",
		Type:      models.EventPersonal,
		StartDate: day(0, 9, 30),
		EndDate:   day(0, 10, 0),
		Status:    models.EventCancelled,
		Notes:     "Moved to next week",
	})

	s.mustTask(models.Task{
		Title:         "Hang the spring series",
		Priority:      models.PriorityUrgent,
		Status:        models.TaskInProgress,
		DueDate:       timePtr(day(6, 18, 0)),
		EstimatedTime: intPtr(240),
		Checklist: []models.ChecklistItem{
			{Text: "Measure walls", Completed: true},
			{Text: "Print labels"},
			{Text: "Light check"},
		},
		Tags:         []string{"exhibition"},
		RelatedEvent: &opening.ID,
	})
	s.mustTask(models.Task{
		Title:    "Send invoices",
		Priority: models.PriorityHigh,
		Status:   models.TaskPending,
		DueDate:  timePtr(day(-2, 12, 0)),
		Tags:     []string{"admin"},
	})
	s.mustTask(models.Task{
		Title:         "Photograph new works",
		Priority:      models.PriorityMedium,
		Status:        models.TaskPending,
		EstimatedTime: intPtr(90),
		Checklist:     []models.ChecklistItem{{Text: "Charge batteries"}, {Text: "Book the light tent"}},
		Tags:          []string{"catalogue", "shop"},
	})
	s.mustTask(models.Task{
		Title:    "Update price list",
		Priority: models.PriorityLow,
		Status:   models.TaskCompleted,
		DueDate:  timePtr(day(-5, 12, 0)),
		Tags:     []string{"shop"},
	})

	s.mtx.Lock()
	s.artworks = append(s.artworks,
		catalog.Artwork{ID: "art-harbour", Title: "Harbour at Dusk", Kind: catalog.KindOriginal, Medium: "Oil on canvas", Year: 2023, Price: 1800, Currency: "EUR", Stock: 1, Featured: true},
		catalog.Artwork{ID: "art-orchard", Title: "Orchard in Bloom", Kind: catalog.KindOriginal, Medium: "Watercolour", Year: 2024, Price: 650, Currency: "EUR", Stock: 1},
		catalog.Artwork{ID: "art-tide", Title: "Low Tide", Kind: catalog.KindOriginal, Medium: "Acrylic", Year: 2022, Price: 900, Currency: "EUR", Stock: 0},
		catalog.Artwork{ID: "dig-harbour", Title: "Harbour at Dusk (digital)", Kind: catalog.KindDigital, Medium: "High resolution file", Year: 2023, Price: 35, Currency: "EUR", Featured: true},
		catalog.Artwork{ID: "dig-orchard", Title: "Orchard in Bloom (digital)", Kind: catalog.KindDigital, Medium: "High resolution file", Year: 2024, Price: 25, Currency: "EUR"},
	)
	s.mtx.Unlock()
}

func (s *Store) mustEvent(e models.Event) models.Event {
	created, err := s.CreateEvent(context.Background(), e)
	if err != nil {
		panic("sample: bad seed event: " + err.Error())
	}
	return created
}

func (s *Store) mustTask(t models.Task) models.Task {
	created, err := s.CreateTask(context.Background(), t)
	if err != nil {
		panic("sample: bad seed task: " + err.Error())
	}
	return created
}
