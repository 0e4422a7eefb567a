package helper

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"event_access/constants"
	"event_access/model"
	"event_access/store"
	"event_access/utils"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

var summaryScheduler gocron.Scheduler

// StartCheckinSummaryScheduler chạy báo cáo check-in hàng ngày lúc 07:00
func StartCheckinSummaryScheduler(db *gorm.DB, mailer *utils.Mailer) {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("failed to init summary scheduler: %v", err)
		return
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(7, 0, 0))),
		gocron.NewTask(func() { SendCheckinSummaries(db, mailer) }),
	)
	if err != nil {
		log.Printf("failed to schedule checkin summary job: %v", err)
		return
	}

	s.Start()
	summaryScheduler = s
	log.Println("Checkin summary scheduler started (daily 07:00)")
}

func StopCheckinSummaryScheduler() {
	if summaryScheduler != nil {
		if err := summaryScheduler.Shutdown(); err != nil {
			log.Printf("failed to stop summary scheduler: %v", err)
		}
	}
}

// SendCheckinSummaries gom số lượt 24h gần nhất theo result code cho từng
// event có hoạt động và mail cho admin của organization đó
func SendCheckinSummaries(db *gorm.DB, mailer *utils.Mailer) {
	since := time.Now().Add(-24 * time.Hour)
	checkins := store.NewCheckinStore(db)

	var events []model.Event
	if err := db.Find(&events).Error; err != nil {
		log.Printf("summary: failed to load events: %v", err)
		return
	}

	for _, event := range events {
		counts, err := checkins.CountByResultSince(event.ID, since)
		if err != nil {
			log.Printf("summary: failed to count checkins for event %d: %v", event.ID, err)
			continue
		}
		if len(counts) == 0 {
			continue
		}

		results := make([]string, 0, len(counts))
		for result := range counts {
			results = append(results, result)
		}
		sort.Strings(results)

		var body strings.Builder
		fmt.Fprintf(&body, "Check-in summary for %s (last 24h)\n\n", event.Name)
		for _, result := range results {
			fmt.Fprintf(&body, "%-20s %d\n", result, counts[result])
		}

		var admins []model.Account
		if err := db.Where("organization_id = ? AND role = ? AND active = true",
			event.OrganizationId, constants.ROLE_ADMIN).Find(&admins).Error; err != nil {
			continue
		}

		subject := fmt.Sprintf("Daily check-in summary: %s", event.Name)
		for _, admin := range admins {
			if admin.Email == "" {
				continue
			}
			if err := mailer.SendPlainEmail(admin.Email, subject, body.String()); err != nil {
				log.Printf("summary: failed to mail %s: %v", admin.Email, err)
			}
		}
	}
}
