package utils

import (
	"reflect"

	"github.com/mmdatafocus/inventory_backend/config"
)

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

func listKey[T any]() string {
	return GetTypeName[T]() + "List"
}

// store list of T
func StoreRedisList[T any](obj []*T) error {
	return config.SetRedisObject(listKey[T](), &obj, config.CacheLifespan())
}

// retrieve a list.
// returns nil if does not exist
func RetrieveRedisList[T any]() ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(listKey[T](), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

func RemoveRedisList[T any]() error {
	return config.RemoveRedisKey(listKey[T]())
}
