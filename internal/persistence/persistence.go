package persistence

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/epfa/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketRuns  = "runs"
	BucketFiles = "files"
)

// sources of a run
const (
	SourceCli = "cli"
	SourceApi = "api"
)

// RunRecord describes a single processed file
type RunRecord struct {
	Id   uint64    `json:"id"`
	Path string    `json:"path"`
	Time time.Time `json:"time"`

	// Speed is the requested fan speed in percent, TargetPwm the clamped native value
	Speed      float64 `json:"speed"`
	TargetPwm  float64 `json:"targetPwm"`
	StartLayer int     `json:"startLayer"`

	Lines    int  `json:"lines"`
	Layers   int  `json:"layers"`
	Changes  int  `json:"changes"`
	Stripped int  `json:"stripped"`
	DryRun   bool `json:"dryRun"`
	// Source of the run, SourceCli or SourceApi
	Source string `json:"source"`
}

type Persistence interface {
	Init() error

	SaveRun(record RunRecord) (id uint64, err error)
	// LoadRuns returns the most recent runs, newest first. A limit <= 0 returns all runs.
	LoadRuns(limit int) ([]RunRecord, error)
	// LoadLastRun returns the most recent run for the given file path, os.ErrNotExist if there is none
	LoadLastRun(path string) (RunRecord, error)
	DeleteRuns() error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Debug("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveRun stores the given record, assigning it a new id
func (p persistence) SaveRun(record RunRecord) (id uint64, err error) {
	db, err := p.openPersistence()
	if err != nil {
		return 0, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.Update(func(tx *bolt.Tx) error {
		runs, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		files, err := tx.CreateBucketIfNotExists([]byte(BucketFiles))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}

		id, err = runs.NextSequence()
		if err != nil {
			return err
		}
		record.Id = id

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		key := itob(id)
		err = runs.Put(key, data)
		if err != nil {
			return err
		}
		return files.Put([]byte(record.Path), key)
	})

	return id, err
}

func (p persistence) LoadRuns(limit int) ([]RunRecord, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	result := []RunRecord{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		if b == nil {
			// no runs yet
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(result) >= limit {
				break
			}
			var record RunRecord
			if err := json.Unmarshal(v, &record); err != nil {
				ui.Warning("Unable to unmarshal saved run %d: %v", btoi(k), err)
				continue
			}
			result = append(result, record)
		}
		return nil
	})

	return result, err
}

func (p persistence) LoadLastRun(path string) (RunRecord, error) {
	var record RunRecord

	db, err := p.openPersistence()
	if err != nil {
		return record, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.View(func(tx *bolt.Tx) error {
		files := tx.Bucket([]byte(BucketFiles))
		runs := tx.Bucket([]byte(BucketRuns))
		if files == nil || runs == nil {
			return os.ErrNotExist
		}
		key := files.Get([]byte(path))
		if key == nil {
			return os.ErrNotExist
		}
		v := runs.Get(key)
		if v == nil {
			return os.ErrNotExist
		}
		return json.Unmarshal(v, &record)
	})

	return record, err
}

func (p persistence) DeleteRuns() error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketRuns, BucketFiles} {
			if tx.Bucket([]byte(bucket)) == nil {
				continue
			}
			if err := tx.DeleteBucket([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
}

// itob returns an 8-byte big endian representation of v, so keys sort by id
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
