package tou

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

// TariffFile is the on-disk format used by the offline calculate command.
//
//	default_rate: 45.0
//	profiles:
//	  - name: Elvia 2024
//	    effective_from: 2024-01-01
//	    windows:
//	      - {day_of_week: 0, start_time: "06:00", end_time: "22:00", energy_rate: 35.0}
type TariffFile struct {
	DefaultRateOre float64               `yaml:"default_rate"`
	Profiles       []model.TariffProfile `yaml:"profiles"`
}

func LoadTariffFile(r io.Reader) (TariffFile, error) {
	var f TariffFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return TariffFile{}, fmt.Errorf("decoding tariff file: %w", err)
	}
	if err := ValidateProfiles(f.Profiles); err != nil {
		return TariffFile{}, err
	}
	return f, nil
}

func LoadTariffFilePath(path string) (TariffFile, error) {
	fh, err := os.Open(path)
	if err != nil {
		return TariffFile{}, err
	}
	defer fh.Close()
	return LoadTariffFile(fh)
}
