// Package config loads settings for the reactor command.
//
// Settings come from three layers, later ones winning: built-in defaults,
// an optional JSON or YAML file, and REACTOR_* environment variables.
// Nested keys map to variables with dots replaced by underscores, so
// remote.send_buffer is read from REACTOR_REMOTE_SEND_BUFFER.
//
// # File Structure
//
//	server:
//	  addr: ":8080"
//	  shutdown_timeout: 5s
//	remote:
//	  write_timeout: 10s
//	  pong_wait: 60s
//	  ping_interval: 50s
//	  send_buffer: 256
//	  max_message_size: 65536
//	metrics:
//	  enabled: true
//	  namespace: reactor
//	log:
//	  level: info
//	scheduler:
//	  max_flush_passes: 100
//	loop:
//	  queue_size: 256
//
// # Usage
//
//	cfg, err := config.Load("reactor.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hub := remote.New(doc, l, rt, remote.WithConfig(cfg.RemoteConfig()))
package config
