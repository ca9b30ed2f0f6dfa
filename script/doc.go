// Package script loads configuration scripts that build dataset SDK objects.
//
// Scripts use a restricted HCL grammar: every top-level block is named after
// a buildable's registered short name and labelled with the object's name.
//
//	partition_strategy "by_user" {
//	  hash "username" {
//	    name    = "username_part"
//	    buckets = 16
//	  }
//	}
//
//	descriptor "users" {
//	  schema_uri = "resource:user.avsc"
//	  format     = "parquet"
//	  strategy   = "by_user"
//	  properties = {
//	    owner = env.USER
//	  }
//	}
//
//	descriptor "users_csv" {
//	  base   = "users"
//	  format = "csv"
//	}
//
//	file_system_repository "main" {
//	  root = "./repo"
//	}
//
// Blocks are evaluated in source order. "base" seeds a build from an earlier
// object of the same kind. Expressions may reference env.<NAME> and call
// upper, lower, format and join; nothing else from the host is reachable.
package script
