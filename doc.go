/*
Package docstore implements an embedded document store on top of an ordered
key-value store (Bolt, or a transient in-memory map for tests).

We implement:

1. Collections of typed documents addressed by a composite key: a partition
key plus an optional sort key.

2. An optional secondary index per collection, mapping a key derived from the
document to the documents that currently have it.

3. Paginated queries by partition, by secondary key, or by both.

4. A region allocator (Manager) that lets many collections share one file
without ever sharing storage.

# Technical Details

**Regions.**
The store is divided into 255 regions, each one a top-level Bolt bucket named
r000..r254. A collection owns one region for documents and optionally a second
one for its secondary index. The Manager records every claim in the _meta
bucket, so collections find their regions again after a restart and a
conflicting registration fails before anything is written.

**Transactions.**
Each Insert, Get or Query runs in a single storage transaction, so an insert
that fails part way (say, on a corrupt index bucket) changes nothing.

## Binary encoding

**Key encoding.**
The partition key is encoded with an order-preserving string encoding,
followed by a null marker for an absent sort key or by the encoded sort key.
Byte order of encoded keys is CompositeKey.Compare order, and every key of a
partition starts with the encoded partition key.

**Value**:
1. Flags (uvarint): format version and data encoding (msgpack or JSON).
2. Data size (uvarint).
3. Data.
4. xxhash64 of the data (8 bytes, big endian).

**Document data**: msgpack (or JSON) of the key and the value, at most
MaxDocumentSize bytes.

**Index buckets** are keyed by the KeyCodec encoding of the secondary key and
hold the list of composite keys, in the same value framing.
*/
package docstore
