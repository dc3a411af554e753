// Package storage はローカルディスク上の公開ファイルへのアクセスを提供します。
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// IndexFile はディレクトリへのリクエストで返すファイル名です。
const IndexFile = "index.html"

// Local は指定ディレクトリ配下のファイルだけを開けるストレージです。
// シンボリックリンクなどでルートの外に出ることはできません。
type Local struct {
	root *os.Root
	dir  string
}

// NewLocal は dir をルートとする Local を作成します。
func NewLocal(dir string) (*Local, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open public dir %q: %w", dir, err)
	}
	return &Local{root: root, dir: dir}, nil
}

// Dir はルートディレクトリのパスを返します。
func (l *Local) Dir() string {
	return l.dir
}

// Open は URL パスに対応するファイルを開きます。
// ディレクトリの場合は index.html を開き、無ければ fs.ErrNotExist を返します（一覧は返しません）。
// 返り値の name は実際に開いたファイルのルートからの相対パスです。
func (l *Local) Open(urlPath string) (file *os.File, info fs.FileInfo, name string, err error) {
	name = relName(urlPath)

	file, info, err = l.openFile(name)
	if err != nil {
		return nil, nil, "", err
	}
	if !info.IsDir() {
		return file, info, name, nil
	}
	file.Close()

	name = path.Join(name, IndexFile)
	file, info, err = l.openFile(name)
	if err != nil {
		return nil, nil, "", err
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, "", fs.ErrNotExist
	}
	return file, info, name, nil
}

func (l *Local) openFile(name string) (*os.File, fs.FileInfo, error) {
	file, err := l.root.Open(name)
	if err != nil {
		return nil, nil, normalizeError(err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

// Close はルートディレクトリのハンドルを閉じます。
func (l *Local) Close() error {
	return l.root.Close()
}

// relName は URL パスを os.Root 用の相対パスに変換します。
func relName(urlPath string) string {
	cleaned := path.Clean("/" + urlPath)
	name := strings.TrimPrefix(cleaned, "/")
	if name == "" {
		return "."
	}
	return name
}

// normalizeError はルート外を指すリンクなど、開けないパスを「存在しない」として扱います。
func normalizeError(err error) error {
	var pathErr *fs.PathError
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &pathErr) {
		return fs.ErrNotExist
	}
	return err
}
