package main

import "errors"

var errNoDatabase = errors.New("FITQUEST_DATABASE_URL is not set")
