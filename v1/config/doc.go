/*
Package config loads the satmeta configuration file.

The file is YAML with one section per component:

	api_server:
	  url: http://localhost:8000
	database:
	  main_database_name: satellite_database
	  main_collection_name: satellite_metadata
	  url: mongodb://localhost:27017
	  timeout: 1.5
	subscriber:
	  transport: rabbit
	  rabbit:
	    connection: {host: localhost, port: 5672, user: guest, password: guest}
	    channel: {exchange_name: satellite, routing_key: "#", queue_name: satmeta}
	logger:
	  level: info
	cache:
	  enabled: true
	  host: localhost
	  ttl: 5m

Every key can be overridden from the environment: the key path in upper case,
dots replaced by underscores and prefixed with SATMETA_, for example
SATMETA_DATABASE_URL. Command line flags bound with MustBindPFlag take
precedence over both.

The database timeout is in seconds. Zero keeps the driver defaults.
*/
package config
