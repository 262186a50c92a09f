// Package config loads the configuration of the permalink server.
//
// The configuration is stored in permalink.json, permalink.yaml or
// permalink.yml. Values left out keep their defaults.
//
// # Configuration File Structure
//
//	control:
//	  position: bottomright
//	  useLocation: true
//	  useLocalStorage: true
//	  localStorageId: paramsTemp
//	  postfix: ""
//	  urlParseOptions:
//	    convertBoolean: true
//	    convertNumber: true
//	    convertJSON: true
//	storage:
//	  backend: redis        # memory, redis, badger or s3
//	  timeout: 5s
//	  redis:
//	    addr: localhost:6379
//	    prefix: "permalink:"
//	  broadcast:
//	    natsUrl: nats://localhost:4222
//	map:
//	  center: {lat: 55.68, lng: 12.57}
//	  zoom: 6
//	  maxZoom: 18
//	server:
//	  addr: ":8080"
//	  href: /map
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store, closeStore, err := cfg.OpenStorage()
package config
