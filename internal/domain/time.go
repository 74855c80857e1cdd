package domain

// TimeSortLayout renders timestamps used as DynamoDB range keys. DynamoDB
// compares string keys lexically and RFC3339Nano trims trailing fractional
// zeros, so "10:00:00.5Z" would sort after "10:00:00.51Z". The zero-padded
// fraction keeps lexical order chronological while preserving nanosecond
// precision.
const TimeSortLayout = "2006-01-02T15:04:05.000000000Z07:00"
