package models

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Warn representa una advertencia individual.
// El orden dentro de la lista es el número de advertencia (1-based).
type Warn struct {
	ID          string    `bson:"id" json:"id"`
	Reason      string    `bson:"reason" json:"reason"`
	Moderator   string    `bson:"moderator" json:"moderator"`
	ModeratorID int64     `bson:"moderator_id" json:"moderator_id"`
	Timestamp   WarnTime  `bson:"timestamp" json:"timestamp"`
}

// WarnTime es el momento de una advertencia. Acepta RFC 3339 y también el ISO 8601
// sin zona horaria de los warns.json antiguos, que se interpreta como UTC.
type WarnTime struct {
	time.Time
}

// Formatos aceptados además de RFC 3339; la fracción de segundos es opcional.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// NewWarnTime envuelve t.
func NewWarnTime(t time.Time) WarnTime {
	return WarnTime{Time: t}
}

// ParseWarnTime interpreta s; devuelve el tiempo cero si ningún formato encaja.
func ParseWarnTime(s string) WarnTime {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return WarnTime{Time: t}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return WarnTime{Time: t}
		}
	}
	return WarnTime{}
}

// UnmarshalJSON nunca falla: un valor ilegible deja el tiempo en cero
// para que la advertencia siga siendo utilizable.
func (t *WarnTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = WarnTime{}
		return nil
	}
	*t = ParseWarnTime(s)
	return nil
}

func (t WarnTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.Time)
}

func (t *WarnTime) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	return bson.RawValue{Type: bt, Value: data}.Unmarshal(&t.Time)
}

// WarnsDocument agrupa las advertencias de un usuario en un servidor.
type WarnsDocument struct {
	GuildID string `bson:"guildId" json:"guildId"`
	UserID  string `bson:"userId" json:"userId"`
	Warns   []Warn `bson:"warns" json:"warns"`
}

// ParseSnowflake convierte un ID de Discord a int64; devuelve 0 si no es válido.
func ParseSnowflake(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatSnowflake es la inversa de ParseSnowflake.
func FormatSnowflake(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
