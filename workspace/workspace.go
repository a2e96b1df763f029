package workspace

import (
	"archive/zip"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	config "github.com/radiquiz/backend/configs"
)

// DefaultStudentInstructions is the instruction block preloaded into new
// user defaults, matching the AMC answer-sheet conventions.
const DefaultStudentInstructions = "Aucun document n'est autorisé. " +
	"L'usage de la calculatrice est interdit. " +
	"Les questions faisant apparaître le symbole ♣ peuvent présenter zéro, une ou plusieurs " +
	"bonnes réponses. Les autres ont une unique bonne réponse."

// ErrUnsupportedImage rejects illustration uploads that are not PNG or JPG.
var ErrUnsupportedImage = errors.New("Only PNG and JPG images are supported.")

// UserDir returns STORAGE_ROOT/<userUUID>, creating it if needed.
func UserDir(userUUID string) (string, error) {
	dir := filepath.Join(config.StorageRoot(), userUUID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// QuizDir returns the quiz subtree of a user workspace, provisioning the
// illustrations directory on first use.
func QuizDir(userUUID, quizUUID string) (string, error) {
	userDir, err := UserDir(userUUID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(userDir, quizUUID)
	if err := os.MkdirAll(filepath.Join(dir, "illustrations"), 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// IllustrationPath locates a stored illustration file by name.
func IllustrationPath(userUUID, quizUUID, filename string) (string, error) {
	quizDir, err := QuizDir(userUUID, quizUUID)
	if err != nil {
		return "", err
	}
	return filepath.Join(quizDir, "illustrations", filename), nil
}

// StoreIllustration writes image data under the quiz workspace, named by the
// md5 digest of its content so re-uploads of the same file deduplicate.
func StoreIllustration(userUUID, quizUUID, originalFilename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	switch ext {
	case ".png", ".jpg":
	case ".jpeg":
		ext = ".jpg"
	default:
		return "", ErrUnsupportedImage
	}

	digest := md5.Sum(data)
	storedName := hex.EncodeToString(digest[:]) + ext

	path, err := IllustrationPath(userUUID, quizUUID, storedName)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return storedName, nil
}

// RemoveIllustration deletes a stored illustration file. Missing files are
// not an error.
func RemoveIllustration(userUUID, quizUUID, filename string) error {
	path, err := IllustrationPath(userUUID, quizUUID, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveQuizDir deletes the whole quiz subtree.
func RemoveQuizDir(userUUID, quizUUID string) error {
	userDir, err := UserDir(userUUID)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(userDir, quizUUID))
}

// CopyQuizDir clones a quiz subtree for quiz duplication.
func CopyQuizDir(userUUID, sourceQuizUUID, targetQuizUUID string) error {
	userDir, err := UserDir(userUUID)
	if err != nil {
		return err
	}
	sourceDir := filepath.Join(userDir, sourceQuizUUID)
	targetDir := filepath.Join(userDir, targetQuizUUID)

	if _, err := os.Stat(sourceDir); errors.Is(err, fs.ErrNotExist) {
		_, err = QuizDir(userUUID, targetQuizUUID)
		return err
	}

	err = filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(targetDir, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		return err
	}
	_, err = QuizDir(userUUID, targetQuizUUID)
	return err
}

// RemoveUserDir deletes the whole workspace on account deletion.
func RemoveUserDir(userUUID string) error {
	return os.RemoveAll(filepath.Join(config.StorageRoot(), userUUID))
}

// ExportZip streams the user's whole workspace as a zip archive.
func ExportZip(userUUID string, w io.Writer) error {
	userDir, err := UserDir(userUUID)
	if err != nil {
		return err
	}

	archive := zip.NewWriter(w)
	err = filepath.WalkDir(userDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(userDir, path)
		if err != nil {
			return err
		}
		writer, err := archive.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}
	return archive.Close()
}

// RosterPath locates a class roster CSV in the user workspace.
func RosterPath(userUUID, listUUID string) (string, error) {
	userDir, err := UserDir(userUUID)
	if err != nil {
		return "", err
	}
	return filepath.Join(userDir, fmt.Sprintf("%s.csv", listUUID)), nil
}
