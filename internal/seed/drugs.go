package seed

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"medstock/m/domain"
)

//go:embed drugs.csv
var drugMasterList string

const drugColumns = 6

// LoadDrugs reads the drug master list CSV. Malformed rows are logged and skipped.
func LoadDrugs(r io.Reader, createdAt time.Time, logger *zap.Logger) ([]domain.Drug, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("seed.LoadDrugs: read header: %w", err)
	}

	var drugs []domain.Drug
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("unable to read drug row", zap.Error(err))
			continue
		}
		if len(record) < drugColumns {
			continue
		}
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if id == "" || name == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			logger.Warn("duplicate drug id ignored", zap.String("drug_id", id))
			continue
		}
		seen[id] = struct{}{}

		drugs = append(drugs, domain.Drug{
			ID:             id,
			Name:           name,
			Strength:       strings.TrimSpace(record[2]),
			DosageForm:     strings.TrimSpace(record[3]),
			Category:       strings.TrimSpace(record[4]),
			SearchName:     strings.ToLower(name),
			SearchKeywords: splitKeywords(record[5]),
			CreatedAt:      createdAt,
		})
	}

	logger.Info("seeded drug master list", zap.Int("rows", len(drugs)))
	return drugs, nil
}

func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ";") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
