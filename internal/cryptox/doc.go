// Package cryptox is the passphrase cipher used for every piece of content
// sealnote encrypts: the serialized envelope and each attached file.
//
// Two blob formats exist. Both are standard base64 text without whitespace.
//
//   - SchemeOpenSSL (default): "Salted__" ‖ salt[8] ‖ AES-256-CBC/PKCS#7,
//     key and IV derived with EVP_BytesToKey (MD5, one round). This is the
//     format produced by `openssl enc -aes-256-cbc -md md5` and by browser
//     clients that use the same construction, so existing links keep working.
//     It carries no integrity tag: a wrong passphrase is only noticed because
//     the padding or the UTF-8 decoding of the result breaks.
//   - SchemeSealed (opt-in): "Sealed1_" ‖ salt[16] ‖ nonce[12] ‖ AES-256-GCM,
//     key derived with argon2id. A wrong passphrase always fails.
//
// Decrypt detects the scheme from the header, so a Cipher configured for
// either scheme opens both formats.
//
// Transport helpers wrap blobs at 64 columns for display and strip all
// whitespace again before decryption.
package cryptox
