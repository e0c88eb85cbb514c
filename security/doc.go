// Package security builds client TLS settings for outbound connections of
// the gateway, currently the Redis credential store.
//
//	store:
//	  redis:
//	    tls:
//	      enabled: true
//	      ca_file: /etc/authgate/redis-ca.pem
package security
