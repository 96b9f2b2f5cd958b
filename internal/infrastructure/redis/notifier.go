// Package redis implementa el notificador de eventos sobre Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/config"
)

// Notifier publica cada evento en el canal events:<subject_id>. Un mismo
// sujeto publica siempre al mismo canal, lo que preserva el orden por sujeto.
type Notifier struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewNotifier construye el notificador verificando la conexión.
func NewNotifier(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*Notifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Notifier{client: client, log: log}, nil
}

// Publish serializa el evento y lo publica. Los fallos solo se registran:
// la notificación nunca propaga error a la operación de origen.
func (n *Notifier) Publish(ctx context.Context, ev entity.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Str("kind", ev.Kind).Msg("no se pudo serializar el evento")
		return
	}
	channel := "events:" + ev.SubjectID
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.log.Error().Err(err).
			Str("kind", ev.Kind).
			Str("channel", channel).
			Msg("no se pudo publicar el evento")
		return
	}
	n.log.Debug().Str("kind", ev.Kind).Str("channel", channel).Msg("evento publicado")
}

// Close cierra la conexión con Redis.
func (n *Notifier) Close() error {
	return n.client.Close()
}
