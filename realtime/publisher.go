package realtime

import (
	"encoding/json"
	"reflect"
	"time"

	"gorm.io/gorm"

	"github.com/kasilami/kasilami/utils"
)

const publisherName = "realtime:publish_insert"

// feedRecord is implemented by models whose inserts are broadcast.
type feedRecord interface {
	FeedColumns() map[string]string
}

// RegisterPublisher makes every committed insert through db publish an
// INSERT event on feed. Publish failures are logged; the write stands.
func RegisterPublisher(db *gorm.DB, feed Feed) error {
	return db.Callback().Create().After("gorm:commit_or_rollback_transaction").Register(publisherName, func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil {
			return
		}
		table := tx.Statement.Schema.Table
		for _, rec := range insertedRecords(tx.Statement.ReflectValue) {
			record, err := json.Marshal(rec)
			if err != nil {
				utils.Sugar.Warnf("realtime: encode %s row: %v", table, err)
				continue
			}
			ev := Event{
				Type:            EventInsert,
				Table:           table,
				Columns:         rec.FeedColumns(),
				Record:          record,
				CommitTimestamp: time.Now().UTC(),
			}
			if err := feed.Publish(tx.Statement.Context, ev); err != nil {
				utils.Sugar.Warnf("realtime: publish %s insert: %v", table, err)
			}
		}
	})
}

func insertedRecords(v reflect.Value) []feedRecord {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		if rec, ok := asFeedRecord(v); ok {
			return []feedRecord{rec}
		}
	case reflect.Slice, reflect.Array:
		out := make([]feedRecord, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, insertedRecords(v.Index(i))...)
		}
		return out
	}
	return nil
}

func asFeedRecord(v reflect.Value) (feedRecord, bool) {
	if v.CanAddr() {
		if rec, ok := v.Addr().Interface().(feedRecord); ok {
			return rec, true
		}
	}
	rec, ok := v.Interface().(feedRecord)
	return rec, ok
}
