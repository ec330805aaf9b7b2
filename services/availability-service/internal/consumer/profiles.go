package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"github.com/segmentio/kafka-go"
)

const TopicProfileUpdated = "user.profile.updated.v1"

// UserWriter stores user profiles received from the profile topic.
type UserWriter interface {
	PutUser(ctx context.Context, u availability.User) error
}

type profileUpdated struct {
	UserID        string                         `json:"user_id"`
	Name          string                         `json:"name"`
	CountryISONum int                            `json:"country_iso_num"`
	Role          string                         `json:"role"`
	Availability  availability.DailyAvailability `json:"availability"`
}

// ZoneChecker reports whether a country code can be resolved to a zone.
type ZoneChecker interface {
	Resolve(countryISONum int) (string, error)
}

// ProfileHandler upserts users from profile events. Malformed events are
// logged and dropped; store failures are returned so the event is retried.
func ProfileHandler(logger *slog.Logger, users UserWriter, zones ZoneChecker) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt profileUpdated
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid profile event", "err", err)
			return nil
		}
		u, err := evt.toUser()
		if err != nil {
			logger.Error("invalid profile event", "err", err, "user_id", evt.UserID)
			return nil
		}
		if _, err := zones.Resolve(u.CountryISONum); err != nil {
			logger.Warn("profile country has no zone", "user_id", u.ID, "country_iso_num", u.CountryISONum)
			return nil
		}
		if err := users.PutUser(ctx, u); err != nil {
			return err
		}
		logger.Debug("profile stored", "user_id", u.ID, "role", u.Role)
		return nil
	}
}

func (e profileUpdated) toUser() (availability.User, error) {
	if e.UserID == "" {
		return availability.User{}, errors.New("missing user_id")
	}
	role := availability.Role(e.Role)
	if role != availability.RoleTutor && role != availability.RoleStudent {
		return availability.User{}, fmt.Errorf("unknown role %q", e.Role)
	}
	return availability.User{
		ID:            e.UserID,
		Name:          e.Name,
		CountryISONum: e.CountryISONum,
		Role:          role,
		Availability:  e.Availability,
	}, nil
}
