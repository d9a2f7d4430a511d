package app

import (
	"fmt"

	"hubspot-connector/internal/common/logging"
	"hubspot-connector/internal/credentials"
	"hubspot-connector/internal/crypto"
	"hubspot-connector/internal/redis"
)

func (app *App) initializeRedis() error {
	redisConfig := &redis.Config{
		Address:  app.Config.RedisAddress,
		Password: app.Config.RedisPassword,
		DB:       app.Config.RedisDB,
		PoolSize: app.Config.RedisPoolSize,
	}

	redisClient, err := redis.NewClient(redisConfig)
	if err != nil {
		return fmt.Errorf("credential store unavailable: %w", err)
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected",
		logging.Field{Key: "address", Value: redisConfig.Address},
		logging.Field{Key: "db", Value: redisConfig.DB},
	)
	return nil
}

// initializeStore builds the credential store on top of Redis. Values are
// sealed when an encryption key is configured.
func (app *App) initializeStore() error {
	var store credentials.Store = credentials.NewRedisStore(app.RedisClient, "")

	if app.Config.CredentialEncryptionKey != "" {
		encryptor, err := crypto.NewEncryptor(app.Config.CredentialEncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize credential encryption: %w", err)
		}
		store = credentials.NewEncryptedStore(store, encryptor)
		app.Logger.Info("Credential encryption: Enabled")
	} else {
		app.Logger.Warn("Credential encryption: Disabled, tokens are cached in plaintext")
	}

	app.Store = store
	return nil
}
