package csvstore

import (
	"context"

	"github.com/fastygo/taskapp/domain"
	"github.com/fastygo/taskapp/repository"
)

type logRepository struct {
	file *File
}

// NewLogRepository returns a CSV-backed audit trail.
func NewLogRepository(file *File) repository.LogRepository {
	return &logRepository{file: file}
}

func (r *logRepository) Save(ctx context.Context, log domain.Log) error {
	if !log.Status.Valid() {
		return domain.ErrInvalidPayload
	}
	return r.file.appendRecord(ctx, logFields(log))
}

func (r *logRepository) FindAll(ctx context.Context) ([]domain.Log, error) {
	rows, err := r.file.rows(ctx)
	if err != nil {
		return nil, err
	}

	logs := make([]domain.Log, 0, len(rows))
	for _, row := range rows {
		log, err := r.scanLog(row)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// DeleteByTaskCode rewrites the store without any entry for taskCode.
func (r *logRepository) DeleteByTaskCode(ctx context.Context, taskCode int) error {
	logs, err := r.FindAll(ctx)
	if err != nil {
		return err
	}

	records := make([][]string, 0, len(logs))
	for _, log := range logs {
		if log.TaskCode == taskCode {
			continue
		}
		records = append(records, logFields(log))
	}
	return r.file.rewrite(ctx, records)
}

func (r *logRepository) scanLog(row row) (domain.Log, error) {
	taskCode, err := r.file.intField(row, 0)
	if err != nil {
		return domain.Log{}, err
	}
	userCode, err := r.file.intField(row, 1)
	if err != nil {
		return domain.Log{}, err
	}
	status, err := r.file.statusField(row, 2)
	if err != nil {
		return domain.Log{}, err
	}
	date, err := r.file.dateField(row, 3)
	if err != nil {
		return domain.Log{}, err
	}
	return domain.Log{
		TaskCode:       taskCode,
		ChangeUserCode: userCode,
		Status:         status,
		ChangeDate:     date,
	}, nil
}

func logFields(log domain.Log) []string {
	return []string{
		itoa(log.TaskCode),
		itoa(log.ChangeUserCode),
		itoa(int(log.Status)),
		log.ChangeDate.Format(dateLayout),
	}
}
