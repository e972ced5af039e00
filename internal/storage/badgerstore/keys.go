package badgerstore

import "strings"

// Key composition follows the teacher's prefix-scan idiom: every physical
// key is "<namespace>\x00<...>" so a single BadgerDB keyspace can host the
// primary table, the single-valued secondary indexes, and the set-valued
// membership indexes without collision.
const sep = "\x00"

func primaryKey(table, key string) []byte {
	return []byte(table + sep + "p" + sep + key)
}

func secondaryKey(table string, index int, key string) []byte {
	return []byte(table + sep + "s" + sep + itoa(index) + sep + key)
}

func setMemberKey(table string, index int, indexKey, memberKey string) []byte {
	return []byte(setPrefixString(table, index, indexKey) + memberKey)
}

func setPrefix(table string, index int, indexKey string) []byte {
	return []byte(setPrefixString(table, index, indexKey))
}

func setPrefixString(table string, index int, indexKey string) string {
	return table + sep + "m" + sep + itoa(index) + sep + indexKey + sep
}

func memberSuffix(prefix, full []byte) string {
	return strings.TrimPrefix(string(full), string(prefix))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
