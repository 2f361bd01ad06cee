// Package tracker defines Trackers, which track and save data in an
// experiment
package tracker

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/rlcore/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished. Track is called with the result of
// every environment step of an episode.
type Tracker interface {
	Track(step timestep.Snapshot)
	Save() error
}

// Series is a Tracker whose data is a single series of values, one per
// episode
type Series interface {
	Tracker
	Data() []float64
}

// SaveData encodes data with gob and saves it to filename
func SaveData(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "savedata: could not open save file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return errors.Wrap(err, "savedata: could not encode data")
	}
	return file.Close()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loaddata: could not open data file")
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "loaddata: could not decode data")
	}
	return data, nil
}
