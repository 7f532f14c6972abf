/*
Package typeinfo contains code relating to Go record types and their mapping
onto tables. As much as possible, reflection code is limited to this package.
It derives the ordered column set of a struct from its `db` tags, works out
the key role of every column and rebuilds records from decoded column values.
*/
package typeinfo
