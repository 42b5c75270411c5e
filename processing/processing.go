package processing

import (
	"chequeai/db"
	"chequeai/metrics"
	"chequeai/models"
	"chequeai/storage"
	"context"
	"log"
	"sort"
	"time"

	"gorm.io/gorm/clause"
)

type processingTask interface {
	getName() string
	shouldHandle(*models.Check) bool
	process(*models.Check, storage.StorageAPI) int
}

var (
	tasks = map[string]processingTask{}
)

const batchSize = 50

func registerTask(t processingTask) {
	tasks[t.getName()] = t
}

func Init() {
	if err := db.Instance.AutoMigrate(&ProcessingTask{}); err != nil {
		log.Printf("Auto-migrate error: %v", err)
	}
	registerTask(&thumb{})
}

// StartProcessing runs the pending tasks every interval until ctx is done
func StartProcessing(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		// Keep going while full batches come back
		for processPending() == batchSize {
			if ctx.Err() != nil {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// processPending runs every task that has not been tried yet on the checks with an image.
// Each task gets one try per check. Returns the number of checks looked at.
func processPending() int {
	rows, err := db.Instance.
		Table("bank_checks").
		Joins("LEFT JOIN processing_tasks ON (bank_checks.id = processing_tasks.check_id)").
		Select("bank_checks.id, IFNULL(processing_tasks.status, ''), processing_tasks.check_id").
		Where("bank_checks.bucket_id IS NOT NULL AND "+
			"bank_checks.image_filename != '' AND "+
			"(processing_tasks.status IS NULL OR "+
			"  LENGTH(processing_tasks.status)-LENGTH(REPLACE(processing_tasks.status, ',', ''))+1 < ?)", len(tasks)).
		Order("bank_checks.id").Limit(batchSize).Rows()
	if err != nil {
		log.Printf("processPending error: %v", err)
		return 0
	}
	type pending struct {
		checkID  uint64
		status   string
		recordID *uint64
	}
	var found []pending
	for rows.Next() {
		p := pending{}
		if err = rows.Scan(&p.checkID, &p.status, &p.recordID); err != nil {
			log.Printf("processPending row error: %v", err)
			break
		}
		found = append(found, p)
	}
	rows.Close()

	for _, p := range found {
		check := models.Check{}
		if err = db.Instance.Preload("Bucket").First(&check, p.checkID).Error; err != nil {
			log.Printf("processPending load check error: %v", err)
			continue
		}
		current := ProcessingTask{CheckID: check.ID, Status: p.status}
		statusMap := current.statusToMap()
		for _, taskName := range taskNames() {
			if _, ok := statusMap[taskName]; ok {
				continue
			}
			task := tasks[taskName]
			if !task.shouldHandle(&check) {
				statusMap[taskName] = Skipped
				continue
			}
			storage := storage.StorageFrom(&check.Bucket)
			if storage == nil {
				log.Printf("Task %s, check: %d, storage is nil", taskName, check.ID)
				statusMap[taskName] = FailedStorage
				continue
			}
			start := time.Now()
			statusMap[taskName] = task.process(&check, storage)
			log.Printf("Task %s, check: %d, result: %d, time: %v", taskName, check.ID, statusMap[taskName], time.Since(start).Milliseconds())
			status := metrics.StatusSuccess
			if statusMap[taskName] != Done {
				status = metrics.StatusError
			}
			metrics.Default.RecordTask(taskName, status)
		}
		current.updateWith(statusMap)
		if p.recordID == nil {
			err = db.Instance.Omit(clause.Associations).Create(&current).Error
		} else {
			err = db.Instance.Omit(clause.Associations).Save(&current).Error
		}
		if err != nil {
			log.Printf("processPending save task error: %v", err)
		}
	}
	return len(found)
}

func taskNames() []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
